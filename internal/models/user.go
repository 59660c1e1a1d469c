package models

import "time"

// User represents an application user stored in the users table. StudentID
// links the account to the university's timetable reporting system.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	StudentID    string     `db:"student_id" json:"student_id"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserInfo is the public projection of a user returned by auth endpoints.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	StudentID string `json:"student_id"`
}

// Info returns the public projection of the user.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, StudentID: u.StudentID}
}
