package posts

import "time"

// Post is the persistent post document in the "posts" collection.
// Author is the creating identity's display name or email at creation time —
// a human-readable string, not a stable id. Ownership checks compare against
// this string (see CanMutate).
type Post struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Subtitle  string    `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Content   string    `bson:"content" json:"content"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ImageURL  string    `bson:"postImage,omitempty" json:"postImage,omitempty"`
}
