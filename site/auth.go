package site

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"inkwell/database"

	"golang.org/x/crypto/bcrypt"
)

func generateSessionToken() (string, error) {
	const tokenLength = 32
	tokenBytes := make([]byte, tokenLength)
	_, err := rand.Read(tokenBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func (s *Site) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if Viewer(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "signup", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		s.render(w, r, "signup", map[string]string{"Error": "Username and password are required"})
		return
	}

	_, taken, err := database.UserByUsername(s.db, username)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if taken {
		s.render(w, r, "signup", map[string]string{"Error": "That username is already taken"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	token, err := generateSessionToken()
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	user := database.User{
		Username:     username,
		Email:        strings.TrimSpace(r.FormValue("email")),
		FirstName:    strings.TrimSpace(r.FormValue("first_name")),
		LastName:     strings.TrimSpace(r.FormValue("last_name")),
		PasswordHash: passwordHash,
		SessionToken: token,
	}
	if err := s.db.Create(&user).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
}

func (s *Site) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if Viewer(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "signin", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, found, err := database.UserByUsername(s.db, username)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "signin", map[string]string{"Error": "Unknown username"})
		return
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "signin", map[string]string{"Error": "Invalid password"})
		return
	}

	// Rotate the token on every sign-in.
	token, err := generateSessionToken()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	user.SessionToken = token
	if err := s.db.Save(user).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Site) Logout(w http.ResponseWriter, r *http.Request) {
	if viewer := Viewer(r); viewer != nil {
		viewer.SessionToken = ""
		if err := s.db.Save(viewer).Error; err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionTokenCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}
