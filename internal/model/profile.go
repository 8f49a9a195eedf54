package model

import "time"

// Profile is the signed-in user as returned by /api/profile.
type Profile struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
