package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/metrics"
	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register creates a user account.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /user [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, errInvalidPayload)
	}

	ctx := c.Request().Context()
	in := req.toInput()

	// Field rules and uniqueness lookups are reported together.
	var failures domain.ValidationError
	if err := collectValidation(&failures, c.Validate(&req)); err != nil {
		return writeError(c, err)
	}
	if err := collectValidation(&failures, h.users.CheckRegistration(ctx, in)); err != nil {
		return writeError(c, err)
	}
	if err := failures.OrNil(); err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Register(ctx, in)
	if err != nil {
		return writeError(c, err)
	}

	metrics.RegistrationsTotal.WithLabelValues(user.UserType).Inc()
	return c.JSON(http.StatusOK, registerResponse{
		Message:  "user register successfully!!",
		Register: newUserResponse(user),
	})
}

// Login authenticates by citizenship number and password.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, errInvalidPayload)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	token, user, err := h.users.Login(c.Request().Context(), req.Citizenship, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return writeError(c, err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    newUserResponse(user),
	})
}

// Get returns the authenticated user.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: "user found!", User: newUserResponse(user)})
}

// UpdateProfile changes address, phone or email of the authenticated user.
//
// @Summary      Update profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /user [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, errInvalidPayload)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), id, ports.ProfileUpdate{
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: "user update successfully", User: newUserResponse(user)})
}

// UpdatePassword replaces the password after checking the old one.
//
// @Summary      Change password
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /user/updatePassword [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, errInvalidPayload)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	if err := h.users.UpdatePassword(c.Request().Context(), id, req.OldPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// collectValidation merges a validation failure into dst. Any other error is
// returned unchanged.
func collectValidation(dst *domain.ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		dst.Merge(ve)
		return nil
	}
	return err
}
