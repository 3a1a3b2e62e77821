package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/constants"
	"inkwell/database"

	"gorm.io/datatypes"
)

func tryParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04",
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123,
		time.RFC1123Z,
		time.RFC822,
		time.RFC822Z,
		time.RFC850,
		time.ANSIC,
		time.UnixDate,
		time.RubyDate,
		// custom formats
		"2006-01-02 15:04:05-07:00",
		"2006-01-02",
	}

	for _, layout := range formats {
		date, err := time.Parse(layout, dateStr)
		if err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// buildPostFromFormRequest binds and validates the post form. The author
// is always taken from the signed-in viewer, never from the form.
func (s *Site) buildPostFromFormRequest(r *http.Request, author *database.User) (database.Post, error) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		return database.Post{}, fmt.Errorf("title is required")
	}

	body := r.FormValue("body")
	if strings.TrimSpace(body) == "" {
		return database.Post{}, fmt.Errorf("body is required")
	}
	if len(body) > constants.MAX_POST_LENGTH {
		return database.Post{}, fmt.Errorf("body is longer than %d characters", constants.MAX_POST_LENGTH)
	}

	categoryID, err := strconv.ParseUint(r.FormValue("category"), 10, 64)
	if err != nil {
		return database.Post{}, fmt.Errorf("category is required")
	}
	var category database.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		return database.Post{}, fmt.Errorf("unknown category")
	}

	pubDate, err := tryParseDate(r.FormValue("pub_date"))
	if err != nil {
		return database.Post{}, fmt.Errorf("publish date is required")
	}

	tagsJSON, err := json.Marshal(strings.Split(r.FormValue("tags"), ","))
	if err != nil {
		return database.Post{}, fmt.Errorf("failed to parse post tags")
	}

	return database.Post{
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Title:      title,
		Body:       body,
		PubDate:    pubDate,
		Published:  r.FormValue("published") == "on",
		Tags:       datatypes.JSON(tagsJSON),
	}, nil
}
