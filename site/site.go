package site

import (
	"log"
	"net/http"

	"inkwell/constants"
	"inkwell/database"
	templates "inkwell/templates_fancy"

	"gorm.io/gorm"
)

type Site struct {
	db    *gorm.DB
	debug bool
}

func New(db *gorm.DB, debug bool) *Site {
	return &Site{db: db, debug: debug}
}

type contextKey string

const viewerContextKey = contextKey("viewer")

// Viewer returns the signed-in user for this request, or nil.
func Viewer(r *http.Request) *database.User {
	viewer, _ := r.Context().Value(viewerContextKey).(*database.User)
	return viewer
}

func layoutProps(r *http.Request) templates.LayoutProps {
	props := templates.LayoutProps{Title: constants.APP_NAME}
	if viewer := Viewer(r); viewer != nil {
		props.CurrentUser = viewer.Username
	}
	return props
}

// notFound covers both "does not exist" and "exists but is hidden from
// you" with the same response, so the page never leaks which it was.
func (s *Site) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := templates.NotFoundPage(layoutProps(r)).Render(w); err != nil {
		log.Printf("Failed to render not-found page: %v", err)
	}
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("Internal error on %s %s: %v", r.Method, r.URL.Path, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := templates.ServerErrorPage(layoutProps(r)).Render(w); err != nil {
		log.Printf("Failed to render error page: %v", err)
	}
}
