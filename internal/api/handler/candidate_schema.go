package handler

import (
	"net/url"
	"strings"
	"time"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// ImagePath is the URL prefix candidate images are served under.
const ImagePath = "/public/image/"

type createCandidateRequest struct {
	Name  string `json:"name" form:"name" validate:"required"`
	Party string `json:"party" form:"party" validate:"required"`
}

type updateCandidateRequest struct {
	Name  string `json:"name" form:"name"`
	Party string `json:"party" form:"party"`
}

type candidateResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Party     string              `json:"party"`
	Image     string              `json:"image"`
	Votes     []domain.VoteRecord `json:"votes"`
	VoteCount int                 `json:"voteCount"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type candidateEnvelope struct {
	Message   string             `json:"message"`
	Candidate *candidateResponse `json:"candidate"`
}

type candidateListResponse struct {
	Message       string              `json:"message"`
	CandidateList []candidateResponse `json:"candidateList"`
}

type tallyResponse struct {
	Message string         `json:"message"`
	Record  []domain.Tally `json:"record"`
}

// imageURL turns a stored file name into an absolute URL.
func imageURL(baseURL, filename string) string {
	if filename == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + ImagePath + url.PathEscape(filename)
}

func newCandidateResponse(baseURL string, c *domain.Candidate) candidateResponse {
	votes := c.Votes
	if votes == nil {
		votes = []domain.VoteRecord{}
	}
	return candidateResponse{
		ID:        c.ID,
		Name:      c.Name,
		Party:     c.Party,
		Image:     imageURL(baseURL, c.Image),
		Votes:     votes,
		VoteCount: c.VoteCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
