package auth

import "time"

// User represents an authenticated staff account.
type User struct {
	ID           int64
	Fullname     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public view of the logged in user.
type Profile struct {
	ID          int64    `json:"id"`
	Fullname    string   `json:"fullname"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) profile() Profile {
	return Profile{ID: u.ID, Fullname: u.Fullname, Email: u.Email, Role: u.Role}
}
