package site

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/constants"
	"inkwell/database"
	"inkwell/paginate"
	"inkwell/policy"

	"github.com/go-chi/chi/v5"
)

func parseID(r *http.Request, param string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func redirectToPost(w http.ResponseWriter, r *http.Request, postID uint) {
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusSeeOther)
}

func (s *Site) listPage(w http.ResponseWriter, r *http.Request, filter database.ListFilter, now time.Time) (paginate.Page[database.Post], bool) {
	posts, err := database.ListPosts(s.db, filter, now)
	if err != nil {
		s.serverError(w, r, err)
		return paginate.Page[database.Post]{}, false
	}
	page := paginate.ParsePage(r.URL.Query().Get("page"))
	return paginate.Paginate(posts, page, constants.PAGE_SIZE), true
}

// Index is the front page: every visible post, newest first.
func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	page, ok := s.listPage(w, r, database.ListFilter{}, time.Now())
	if !ok {
		return
	}
	s.render(w, r, "index", map[string]any{"Page": page})
}

// CategoryPosts lists one category. An unpublished category is a 404,
// indistinguishable from a missing one.
func (s *Site) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	category, found, err := database.PublishedCategoryBySlug(s.db, chi.URLParam(r, "slug"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, r)
		return
	}

	page, ok := s.listPage(w, r, database.ListFilter{CategoryID: category.ID}, time.Now())
	if !ok {
		return
	}
	s.render(w, r, "category", map[string]any{
		"Category": category,
		"Page":     page,
	})
}

// Profile lists a user's posts. Owners see all of their posts including
// unpublished and scheduled ones; everyone else sees only visible posts.
func (s *Site) Profile(w http.ResponseWriter, r *http.Request) {
	profile, found, err := database.UserByUsername(s.db, chi.URLParam(r, "username"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, r)
		return
	}

	viewer := Viewer(r)
	isOwner := viewer != nil && viewer.ID == profile.ID

	page, ok := s.listPage(w, r, database.ListFilter{
		AuthorID:      profile.ID,
		IncludeHidden: isOwner,
	}, time.Now())
	if !ok {
		return
	}
	s.render(w, r, "profile", map[string]any{
		"Profile": profile,
		"IsOwner": isOwner,
		"Page":    page,
	})
}

func (s *Site) EditProfile(w http.ResponseWriter, r *http.Request) {
	viewer := Viewer(r)

	if r.Method == http.MethodGet {
		s.render(w, r, "user", map[string]any{"User": viewer})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		s.render(w, r, "user", map[string]any{"User": viewer, "Error": "Username is required"})
		return
	}

	if username != viewer.Username {
		_, taken, err := database.UserByUsername(s.db, username)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if taken {
			s.render(w, r, "user", map[string]any{"User": viewer, "Error": "That username is already taken"})
			return
		}
	}

	viewer.Username = username
	viewer.Email = strings.TrimSpace(r.FormValue("email"))
	viewer.FirstName = strings.TrimSpace(r.FormValue("first_name"))
	viewer.LastName = strings.TrimSpace(r.FormValue("last_name"))
	if err := s.db.Save(viewer).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+viewer.Username+"/", http.StatusSeeOther)
}

// PostDetail renders a post with its comments. Posts hidden from the
// viewer 404 rather than admitting they exist.
func (s *Site) PostDetail(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}

	post, found, err := database.PostByID(s.db, postID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found || !policy.IsVisible(post, Viewer(r), time.Now()) {
		s.notFound(w, r)
		return
	}

	comments, err := database.CommentsForPost(s.db, post.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, "detail", map[string]any{
		"Post":     post,
		"Comments": comments,
	})
}

func (s *Site) CreatePost(w http.ResponseWriter, r *http.Request) {
	viewer := Viewer(r)

	categories, err := database.PublishedCategories(s.db)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "create", map[string]any{"Categories": categories})
		return
	}

	post, formErr := s.buildPostFromFormRequest(r, viewer)
	if formErr != nil {
		s.render(w, r, "create", map[string]any{
			"Categories": categories,
			"Error":      formErr.Error(),
		})
		return
	}

	if err := s.db.Create(&post).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/profile/"+viewer.Username+"/", http.StatusSeeOther)
}

func (s *Site) EditPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}

	post, found, err := database.PostByID(s.db, postID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, r)
		return
	}

	// Non-owners are bounced to the read-only view, not shown an error.
	if !policy.CanMutate(post, Viewer(r)) {
		redirectToPost(w, r, postID)
		return
	}

	categories, err := database.PublishedCategories(s.db)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "create", map[string]any{
			"Post":       post,
			"Categories": categories,
			"Editing":    true,
		})
		return
	}

	updated, formErr := s.buildPostFromFormRequest(r, Viewer(r))
	if formErr != nil {
		s.render(w, r, "create", map[string]any{
			"Post":       post,
			"Categories": categories,
			"Editing":    true,
			"Error":      formErr.Error(),
		})
		return
	}

	// Update named columns only; Save would also upsert the preloaded
	// Author/Category associations.
	err = s.db.Model(post).
		Select("Title", "Body", "CategoryID", "PubDate", "Published", "Tags").
		Updates(database.Post{
			Title:      updated.Title,
			Body:       updated.Body,
			CategoryID: updated.CategoryID,
			PubDate:    updated.PubDate,
			Published:  updated.Published,
			Tags:       updated.Tags,
		}).Error
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	redirectToPost(w, r, postID)
}

func (s *Site) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}

	post, found, err := database.PostByID(s.db, postID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, r)
		return
	}

	if !policy.CanMutate(post, Viewer(r)) {
		redirectToPost(w, r, postID)
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "delete", map[string]any{"Post": post})
		return
	}

	if err := database.DeletePost(s.db, post); err != nil {
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddComment persists a comment and returns to the post either way; a
// blank comment is simply dropped.
func (s *Site) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}

	_, found, err := database.PostByID(s.db, postID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if !found {
		s.notFound(w, r)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text != "" {
		comment := database.Comment{
			PostID:   postID,
			AuthorID: Viewer(r).ID,
			Text:     text,
		}
		if err := s.db.Create(&comment).Error; err != nil {
			s.serverError(w, r, err)
			return
		}
	}

	redirectToPost(w, r, postID)
}

func (s *Site) commentForMutation(w http.ResponseWriter, r *http.Request) (*database.Comment, uint, bool) {
	postID, ok := parseID(r, "postID")
	if !ok {
		s.notFound(w, r)
		return nil, 0, false
	}
	commentID, ok := parseID(r, "commentID")
	if !ok {
		s.notFound(w, r)
		return nil, 0, false
	}

	comment, found, err := database.CommentByID(s.db, commentID)
	if err != nil {
		s.serverError(w, r, err)
		return nil, 0, false
	}
	if !found {
		s.notFound(w, r)
		return nil, 0, false
	}

	// Redirects target the post id from the URL, even when it disagrees
	// with the comment's own post.
	if !policy.CanMutate(comment, Viewer(r)) {
		redirectToPost(w, r, postID)
		return nil, 0, false
	}

	return comment, postID, true
}

func (s *Site) EditComment(w http.ResponseWriter, r *http.Request) {
	comment, postID, ok := s.commentForMutation(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "comment", map[string]any{"Comment": comment, "PostID": postID})
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		s.render(w, r, "comment", map[string]any{
			"Comment": comment,
			"PostID":  postID,
			"Error":   "Comment text is required",
		})
		return
	}

	comment.Text = text
	if err := s.db.Save(comment).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	redirectToPost(w, r, postID)
}

func (s *Site) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, postID, ok := s.commentForMutation(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		s.render(w, r, "comment", map[string]any{
			"Comment":  comment,
			"PostID":   postID,
			"Deleting": true,
		})
		return
	}

	if err := s.db.Delete(comment).Error; err != nil {
		s.serverError(w, r, err)
		return
	}

	redirectToPost(w, r, postID)
}
