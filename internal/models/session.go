package models

import "time"

// Session is the signed-in administrator.
type Session struct {
	Username   string    `json:"username"`
	Role       string    `json:"role,omitempty"`
	Token      string    `json:"token"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Valid reports whether the session carries credentials.
func (s Session) Valid() bool {
	return s.Username != "" && s.Token != ""
}
