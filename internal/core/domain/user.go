package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// MinVotingAge is the minimum age, in full years, required to register.
const MinVotingAge = 18

// User models a registered voter or the election administrator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	DateOfBirth  string    `json:"DoB"`
	Citizenship  string    `json:"citizenship"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	UserType     string    `json:"usertype"`
	IsVoted      bool      `json:"isvoted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.UserType == RoleAdmin
}

// ValidUserType reports whether t is one of the known roles.
func ValidUserType(t string) bool {
	return t == RoleAdmin || t == RoleClient
}

var dobLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDateOfBirth accepts a calendar date (2006-01-02) or a full RFC 3339
// timestamp.
func ParseDateOfBirth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date of birth %q", s)
}

// AgeOn returns the number of full years between dob and now.
func AgeOn(dob, now time.Time) int {
	dob = dob.UTC()
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
