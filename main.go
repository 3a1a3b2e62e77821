package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/database"
	"inkwell/site"

	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetDefault("addr", ":6835")
	viper.SetDefault("database", "inkwell.db")
	viper.SetDefault("debug", false)
	viper.SetDefault("categories", []string{"Notes", "Travel", "Technology"})

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("inkwell")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			log.Fatalf("Failed to read config: %v", err)
		}
	}
}

func main() {
	loadConfig()

	db, err := database.Open(viper.GetString("database"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if err := database.SeedCategories(db, viper.GetStringSlice("categories")); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	s := site.New(db, viper.GetBool("debug"))

	server := &http.Server{
		Addr:    viper.GetString("addr"),
		Handler: s.Routes(),
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server stopped: %v", err)
			signals <- syscall.SIGTERM
		}
	}()

	// Block until a signal is received
	<-signals
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown failed: %v", err)
	}

	if err := database.Close(db); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
