// Package policy holds the two access decisions the handlers share:
// whether a viewer may read a post, and whether a viewer may change an
// entity. Both take the viewer and the clock explicitly so the answers
// depend on nothing but their arguments.
package policy

import (
	"time"

	"inkwell/database"
)

// Ownable is anything carrying an author. Post and Comment both qualify,
// so the owner check is written once.
type Ownable interface {
	OwnerID() uint
}

// IsVisible reports whether viewer may read post. Authors always see their
// own posts; everyone else only sees a post that is published, sits in a
// published category, and whose publish date is not in the future. A post
// publishing exactly at now is visible.
//
// The caller reads the clock once per request and passes it in, so a post
// cannot flip visibility between two checks inside the same request.
func IsVisible(post *database.Post, viewer *database.User, now time.Time) bool {
	if viewer != nil && viewer.ID == post.AuthorID {
		return true
	}
	return post.Published && post.Category.Published && !post.PubDate.After(now)
}

// CanMutate reports whether viewer may edit or delete entity: only the
// author may, and anonymous viewers never can.
func CanMutate(entity Ownable, viewer *database.User) bool {
	return viewer != nil && entity.OwnerID() == viewer.ID
}
