package models

// Identity is the authenticated principal as reported by the identity
// provider. DisplayName and Email may be empty depending on how the account
// was created; ID is the stable subject and the key for the user profile.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// AuthorName returns the human-readable author string stamped on posts:
// display name when set, otherwise email, otherwise "Anonymous".
// Posts are matched back to their author by this string (not by ID) — see
// the ownership check in the posts package.
func (i *Identity) AuthorName() string {
	if i == nil {
		return "Anonymous"
	}
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if i.Email != "" {
		return i.Email
	}
	return "Anonymous"
}
