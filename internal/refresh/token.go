// Package refresh persists long-lived refresh credentials for the mobile
// app's token rotation, plus the redis blacklist for revoked access tokens.
package refresh

import "time"

// Token is a persistent refresh credential bound to a user id.
type Token struct {
	Value     string    `bson:"value" json:"value"`
	UID       string    `bson:"uid" json:"uid"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
