// Package models defines server-side persistent records.
package models

import "time"

// DefaultAvatar is assigned to every identity at registration.
const DefaultAvatar = "my-avatar.jpg"

// User is a registered identity. PasswordHash is a one-way hash and must
// never leave the server; use Public for anything that is sent to a client.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
}

// PublicUser is the projection of User returned by "who am I" reads.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns u without its password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
