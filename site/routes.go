package site

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func (s *Site) Routes() *chi.Mux {
	r := chi.NewRouter()

	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	if s.debug {
		r.Use(middleware.Logger)
	}
	r.Use(httprate.LimitByIP(100, time.Minute)) // general rate limiter for all routes (shared across all routes)
	r.Use(middleware.Recoverer)
	r.Use(s.WithViewer)

	r.Get("/", s.Index)

	r.HandleFunc("/signin", s.SignIn)
	r.HandleFunc("/signup", s.SignUp)
	r.Post("/logout", s.Logout)

	r.With(s.RequireViewer).HandleFunc("/create/", s.CreatePost)
	r.With(s.RequireViewer).HandleFunc("/edit_profile/", s.EditProfile)

	r.Get("/profile/{username}/", s.Profile)
	r.Get("/posts/{postID}/", s.PostDetail)
	r.Get("/category/{slug}/", s.CategoryPosts)

	r.With(s.RequireViewer).HandleFunc("/posts/{postID}/edit/", s.EditPost)
	r.With(s.RequireViewer).HandleFunc("/posts/{postID}/delete/", s.DeletePost)
	r.With(s.RequireViewer).Post("/posts/{postID}/comment/", s.AddComment)
	r.With(s.RequireViewer).HandleFunc("/posts/{postID}/edit_comment/{commentID}/", s.EditComment)
	r.With(s.RequireViewer).HandleFunc("/posts/{postID}/delete_comment/{commentID}/", s.DeleteComment)

	fileServer := http.FileServer(http.Dir("./assets"))
	r.Handle("/assets/*", http.StripPrefix("/assets", fileServer))

	return r
}
