package site

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSite(t *testing.T) (*Site, *gorm.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db, false), db
}

func createUser(t *testing.T, db *gorm.DB, username string) *database.User {
	t.Helper()
	user := &database.User{Username: username, SessionToken: username + "-token"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCategory(t *testing.T, db *gorm.DB, slug string, published bool) *database.Category {
	t.Helper()
	category := &database.Category{Slug: slug, Title: slug, Published: published}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createPost(t *testing.T, db *gorm.DB, author *database.User, category *database.Category, title string, published bool, pubDate time.Time) *database.Post {
	t.Helper()
	post := &database.Post{
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Title:      title,
		Body:       "Some *markdown* body.",
		Published:  published,
		PubDate:    pubDate,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// doRequest runs one request through the full router, optionally signed
// in as the given user via their session cookie.
func doRequest(t *testing.T, s *Site, method, target string, form url.Values, as *database.User) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if as != nil {
		req.AddCookie(&http.Cookie{Name: sessionTokenCookieName, Value: as.SessionToken})
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func postForm(category *database.Category, title string) url.Values {
	return url.Values{
		"title":     {title},
		"body":      {"Body text."},
		"category":  {fmt.Sprint(category.ID)},
		"pub_date":  {"2024-06-01T10:00"},
		"tags":      {"one, two"},
		"published": {"on"},
	}
}

func TestEditPostRequiresSignIn(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "hers", true, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/edit/", post.ID), nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestEditPostByNonOwnerRedirectsToDetail(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "hers", true, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/edit/", post.ID), nil, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))

	// Same deflection on the delete route, and the post survives.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/delete/", post.ID), url.Values{}, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))

	_, found, err := database.PostByID(db, post.ID)
	require.NoError(t, err)
	require.True(t, found)
}

func TestFuturePostHiddenExceptFromAuthor(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "tomorrow", true, time.Now().Add(time.Hour))

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "tomorrow")
}

func TestDraftPostHiddenExceptFromAuthor(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "draft", false, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), nil, bob)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnpublishedCategoryIsNotFound(t *testing.T) {
	s, db := newTestSite(t)
	createCategory(t, db, "tech", true)
	createCategory(t, db, "secret", false)

	rec := doRequest(t, s, http.MethodGet, "/category/tech/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/category/secret/", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/category/missing/", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexPagination(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)

	base := time.Now().Add(-48 * time.Hour)
	for i := 1; i <= 25; i++ {
		// Descending pub dates, so "post-1" is the newest.
		createPost(t, db, alice, tech, fmt.Sprintf("post-%d", i), true, base.Add(-time.Duration(i)*time.Minute))
	}

	rec := doRequest(t, s, http.MethodGet, "/?page=3", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	require.Contains(t, page, "post-21")
	require.Contains(t, page, "post-25")
	require.NotContains(t, page, "post-20")
	require.Contains(t, page, "Page 3 of 3")
	require.Contains(t, page, "Previous")
	require.NotContains(t, page, "Next &raquo;")

	// Out-of-range pages clamp instead of erroring.
	rec = doRequest(t, s, http.MethodGet, "/?page=99", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Page 3 of 3")

	rec = doRequest(t, s, http.MethodGet, "/?page=banana", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Page 1 of 3")
}

func TestIndexHidesInvisiblePosts(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)
	createPost(t, db, alice, tech, "public-post", true, time.Now().Add(-time.Hour))
	createPost(t, db, alice, tech, "secret-draft", false, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "public-post")
	require.NotContains(t, rec.Body.String(), "secret-draft")
}

func TestProfileShowsDraftsOnlyToOwner(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	createPost(t, db, alice, tech, "public-post", true, time.Now().Add(-time.Hour))
	createPost(t, db, alice, tech, "secret-draft", false, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodGet, "/profile/alice/", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "secret-draft")

	rec = doRequest(t, s, http.MethodGet, "/profile/alice/", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "public-post")
	require.NotContains(t, rec.Body.String(), "secret-draft")

	rec = doRequest(t, s, http.MethodGet, "/profile/nobody/", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePost(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)

	rec := doRequest(t, s, http.MethodGet, "/create/", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/create/", postForm(tech, "fresh"), alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	var post database.Post
	require.NoError(t, db.Where("title = ?", "fresh").First(&post).Error)
	require.Equal(t, alice.ID, post.AuthorID)
	require.True(t, post.Published)
}

func TestCreatePostValidation(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)

	form := postForm(tech, "")
	rec := doRequest(t, s, http.MethodPost, "/create/", form, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "title is required")

	var count int64
	require.NoError(t, db.Model(&database.Post{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEditPostIdenticalResubmitIsANoOp(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "stable", true, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	form := url.Values{
		"title":     {"stable"},
		"body":      {post.Body},
		"category":  {fmt.Sprint(tech.ID)},
		"pub_date":  {"2024-06-01T10:00"},
		"tags":      {""},
		"published": {"on"},
	}

	for i := 0; i < 2; i++ {
		rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/edit/", post.ID), form, alice)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))
	}

	after, found, err := database.PostByID(db, post.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "stable", after.Title)
	require.Equal(t, post.Body, after.Body)
	require.Equal(t, tech.ID, after.CategoryID)
	require.True(t, after.Published)

	var count int64
	require.NoError(t, db.Model(&database.Post{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestDeletePostFlow(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "doomed", true, time.Now().Add(-time.Hour))
	comment := database.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "nice"}
	require.NoError(t, db.Create(&comment).Error)

	// Confirmation page first.
	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/posts/%d/delete/", post.ID), nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "doomed")

	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/delete/", post.ID), url.Values{}, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	_, found, err := database.PostByID(db, post.ID)
	require.NoError(t, err)
	require.False(t, found)

	var count int64
	require.NoError(t, db.Model(&database.Comment{}).Count(&count).Error)
	require.Zero(t, count)

	// The post is gone now, so the route 404s.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/delete/", post.ID), url.Values{}, alice)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddComment(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "discuss", true, time.Now().Add(-time.Hour))

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/comment/", post.ID),
		url.Values{"text": {"well said"}}, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))

	comments, err := database.CommentsForPost(db, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, bob.ID, comments[0].AuthorID)
	require.Equal(t, "well said", comments[0].Text)

	// A blank comment is dropped but still redirects.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/comment/", post.ID),
		url.Values{"text": {"   "}}, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	comments, err = database.CommentsForPost(db, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// Anonymous commenters get sent to sign in.
	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/posts/%d/comment/", post.ID),
		url.Values{"text": {"anon"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestEditCommentOwnership(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "discuss", true, time.Now().Add(-time.Hour))
	comment := database.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "original"}
	require.NoError(t, db.Create(&comment).Error)

	target := fmt.Sprintf("/posts/%d/edit_comment/%d/", post.ID, comment.ID)

	// The post author does not own the comment.
	rec := doRequest(t, s, http.MethodPost, target, url.Values{"text": {"hijacked"}}, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))

	after, _, err := database.CommentByID(db, comment.ID)
	require.NoError(t, err)
	require.Equal(t, "original", after.Text)

	rec = doRequest(t, s, http.MethodPost, target, url.Values{"text": {"amended"}}, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	after, _, err = database.CommentByID(db, comment.ID)
	require.NoError(t, err)
	require.Equal(t, "amended", after.Text)

	// Blank text re-renders the form and persists nothing.
	rec = doRequest(t, s, http.MethodPost, target, url.Values{"text": {""}}, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Comment text is required")
}

func TestDeleteCommentFlow(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	tech := createCategory(t, db, "tech", true)
	post := createPost(t, db, alice, tech, "discuss", true, time.Now().Add(-time.Hour))
	comment := database.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "fleeting"}
	require.NoError(t, db.Create(&comment).Error)

	target := fmt.Sprintf("/posts/%d/delete_comment/%d/", post.ID, comment.ID)

	rec := doRequest(t, s, http.MethodGet, target, nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "fleeting")

	rec = doRequest(t, s, http.MethodPost, target, url.Values{}, bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), rec.Header().Get("Location"))

	_, found, err := database.CommentByID(db, comment.ID)
	require.NoError(t, err)
	require.False(t, found)

	// Deleting through the stale route again changes nothing: plain 404.
	var before, afterCount int64
	require.NoError(t, db.Model(&database.Comment{}).Count(&before).Error)
	rec = doRequest(t, s, http.MethodPost, target, url.Values{}, bob)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, db.Model(&database.Comment{}).Count(&afterCount).Error)
	require.Equal(t, before, afterCount)
}

func TestEditProfile(t *testing.T) {
	s, db := newTestSite(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")

	rec := doRequest(t, s, http.MethodGet, "/edit_profile/", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{
		"username":   {"alicia"},
		"email":      {"alicia@example.com"},
		"first_name": {"Alice"},
		"last_name":  {"Liddell"},
	}
	rec = doRequest(t, s, http.MethodPost, "/edit_profile/", form, alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/profile/alicia/", rec.Header().Get("Location"))

	updated, found, err := database.UserByUsername(db, "alicia")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "alicia@example.com", updated.Email)
	require.Equal(t, "Alice", updated.FirstName)

	// Taking someone else's username re-renders with an error.
	rec = doRequest(t, s, http.MethodPost, "/edit_profile/", url.Values{"username": {"bob"}}, updated)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "already taken")
}
