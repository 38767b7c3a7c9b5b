package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// VoteRecord is one entry of a candidate's append-only vote log.
type VoteRecord struct {
	UserID  string    `json:"user"`
	VotedAt time.Time `json:"votedAt"`
}

// Candidate is a contestant users can vote for. Image holds the stored file
// name; the public URL is derived when rendering.
type Candidate struct {
	ID        string
	Name      string
	Party     string
	Image     string
	Votes     []VoteRecord
	VoteCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tally is the per-candidate projection returned by the vote count.
type Tally struct {
	Party string `json:"party"`
	Count int    `json:"count"`
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// AllowedImageExtension reports whether name ends in .jpg, .jpeg or .png,
// compared case-insensitively.
func AllowedImageExtension(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
