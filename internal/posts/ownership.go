package posts

import "github.com/classfeed/classfeed/go-services/internal/models"

// CanMutate decides whether the acting identity may edit or delete the post:
// the identity must be present and its display name or email must equal the
// post's author string. A post with an empty author is never mutable (fail
// closed), and an absent identity always gets false.
//
// Matching on a display string rather than a stored author id is preserved
// behavior: two users sharing a display name would both pass, and a changed
// email loses edit rights. Recorded as an open question in DESIGN.md.
func CanMutate(p *Post, ident *models.Identity) bool {
	if p == nil || ident == nil {
		return false
	}
	if p.Author == "" {
		return false
	}
	if ident.DisplayName != "" && ident.DisplayName == p.Author {
		return true
	}
	return ident.Email != "" && ident.Email == p.Author
}
