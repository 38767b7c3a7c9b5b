package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/metrics"
	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

// CandidateHandler handles candidate management, voting and the tally.
type CandidateHandler struct {
	candidates    ports.CandidateService
	publicBaseURL string
	maxImageBytes int64
}

func NewCandidateHandler(candidates ports.CandidateService, publicBaseURL string, maxImageBytes int64) *CandidateHandler {
	return &CandidateHandler{
		candidates:    candidates,
		publicBaseURL: publicBaseURL,
		maxImageBytes: maxImageBytes,
	}
}

// Create adds a candidate from a multipart form with name, party and image.
//
// @Summary      Add candidate
// @Tags         candidate
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        name   formData  string  true  "Candidate name"
// @Param        party  formData  string  true  "Party"
// @Param        image  formData  file    true  "Image (.jpg, .jpeg, .png, at most 1 MiB)"
// @Success      200    {object}  candidateEnvelope
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Failure      429    {object}  ErrorResponse
// @Router       /candidate [post]
func (h *CandidateHandler) Create(c echo.Context) error {
	var req createCandidateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, bindError(err))
	}

	img, f, err := readImage(c, true, h.maxImageBytes)
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	created, err := h.candidates.Create(c.Request().Context(), ports.CreateCandidateInput{
		Name:  req.Name,
		Party: req.Party,
		Image: *img,
	})
	metrics.ImageUploadsTotal.WithLabelValues(uploadOutcome(err)).Inc()
	if err != nil {
		return writeError(c, err)
	}

	metrics.CandidateChangesTotal.WithLabelValues("create").Inc()
	resp := newCandidateResponse(h.publicBaseURL, created)
	return c.JSON(http.StatusOK, candidateEnvelope{Message: "candidate added successfully!", Candidate: &resp})
}

// Update changes name, party and optionally the image of a candidate.
//
// @Summary      Update candidate
// @Tags         candidate
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Candidate id"
// @Param        name   formData  string  false  "Candidate name"
// @Param        party  formData  string  false  "Party"
// @Param        image  formData  file    false  "Replacement image"
// @Success      200    {object}  candidateEnvelope
// @Failure      400    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /candidate/{id} [put]
func (h *CandidateHandler) Update(c echo.Context) error {
	var req updateCandidateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, bindError(err))
	}

	img, f, err := readImage(c, false, h.maxImageBytes)
	if err != nil {
		return writeError(c, err)
	}
	if f != nil {
		defer f.Close()
	}

	updated, err := h.candidates.Update(c.Request().Context(), ports.UpdateCandidateInput{
		ID:    c.Param("id"),
		Name:  req.Name,
		Party: req.Party,
		Image: img,
	})
	if img != nil {
		metrics.ImageUploadsTotal.WithLabelValues(uploadOutcome(err)).Inc()
	}
	if err != nil {
		return writeError(c, err)
	}

	metrics.CandidateChangesTotal.WithLabelValues("update").Inc()
	resp := newCandidateResponse(h.publicBaseURL, updated)
	return c.JSON(http.StatusOK, candidateEnvelope{Message: "updated successfully!!", Candidate: &resp})
}

// Delete removes a candidate.
//
// @Summary      Delete candidate
// @Tags         candidate
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Candidate id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /candidate/{id} [delete]
func (h *CandidateHandler) Delete(c echo.Context) error {
	if err := h.candidates.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}

	metrics.CandidateChangesTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "candidate profile delete successfully!!"})
}

// List returns every candidate.
//
// @Summary      List candidates
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  candidateListResponse
// @Router       /candidate [get]
func (h *CandidateHandler) List(c echo.Context) error {
	list, err := h.candidates.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	out := make([]candidateResponse, 0, len(list))
	for _, cand := range list {
		out = append(out, newCandidateResponse(h.publicBaseURL, cand))
	}
	return c.JSON(http.StatusOK, candidateListResponse{Message: "Candidate List!!", CandidateList: out})
}

// Vote casts the authenticated user's single vote.
//
// @Summary      Vote
// @Tags         candidate
// @Produce      json
// @Security     BearerAuth
// @Param        candidateID  path      string  true  "Candidate id"
// @Success      200          {object}  messageResponse
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Failure      404          {object}  ErrorResponse
// @Router       /candidate/vote/{candidateID} [post]
func (h *CandidateHandler) Vote(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.candidates.Vote(c.Request().Context(), userID, c.Param("candidateID")); err != nil {
		metrics.VotesRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return writeError(c, err)
	}

	metrics.VotesCastTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Vote successful"})
}

// Tally returns party/count pairs, highest count first.
//
// @Summary      Vote count
// @Tags         candidate
// @Produce      json
// @Success      200  {object}  tallyResponse
// @Router       /candidate/vote/count [get]
func (h *CandidateHandler) Tally(c echo.Context) error {
	record, err := h.candidates.Tally(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if record == nil {
		record = []domain.Tally{}
	}
	return c.JSON(http.StatusOK, tallyResponse{Message: "vote record", Record: record})
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrAdminCannotVote):
		return "admin"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrCandidateNotFound):
		return "not_found"
	default:
		return "error"
	}
}
