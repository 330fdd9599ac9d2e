package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// UserHandler serves account administration and the therapist–client
// relationship. Authorization is applied by the route's middleware chain.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        role         query     string  false  "client, therapist or admin"
// @Param        therapistId  query     string  false  "Only clients of this therapist"
// @Param        status       query     string  false  "pending or active"
// @Success      200          {array}   domain.User
// @Failure      400          {object}  messageResponse
// @Failure      403          {object}  messageResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	var filter ports.UserFilter
	if v := c.QueryParam("role"); v != "" {
		role, err := domain.ParseRole(v)
		if err != nil {
			return err
		}
		filter.Role = role
	}
	if v := c.QueryParam("status"); v != "" {
		status, err := domain.ParseUserStatus(v)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	filter.TherapistID = c.QueryParam("therapistId")

	users, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /api/users. Admin-created accounts are active.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		TherapistID: req.TherapistID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Get handles GET /api/users/:userId.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  domain.User
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param(middleware.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/users/:userId. The role cannot change, and
// email or password only change on the caller's own account unless the
// caller is an admin.
//
// @Summary      Update a profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string                true  "User ID"
// @Param        body    body      updateProfileRequest  true  "Profile fields"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Failure      409     {object}  messageResponse
// @Router       /api/users/{userId} [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.ErrAuthRequired
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), c.Param(middleware.UserIDParam), ports.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Actor:    p,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:userId, removing everything the user owns.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(middleware.UserIDParam)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus handles PATCH /api/users/:userId/status.
//
// @Summary      Activate or deactivate an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string         true  "User ID"
// @Param        body    body      statusRequest  true  "New status"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseUserStatus(req.Status)
	if err != nil {
		return err
	}

	user, err := h.service.SetStatus(c.Request().Context(), c.Param(middleware.UserIDParam), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AssignTherapist handles PUT /api/users/:userId/therapist.
//
// @Summary      Assign a therapist to a client
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string                  true  "Client ID"
// @Param        body    body      assignTherapistRequest  true  "Therapist, or null to unassign"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/therapist [put]
func (h *UserHandler) AssignTherapist(c echo.Context) error {
	var req assignTherapistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.AssignTherapist(c.Request().Context(), c.Param(middleware.UserIDParam), optional(req.TherapistID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AssignSubscription handles PUT /api/users/:userId/subscription.
//
// @Summary      Assign a subscription plan
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string                     true  "User ID"
// @Param        body    body      assignSubscriptionRequest  true  "Plan, or null to remove"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/subscription [put]
func (h *UserHandler) AssignSubscription(c echo.Context) error {
	var req assignSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.AssignSubscription(c.Request().Context(), c.Param(middleware.UserIDParam), optional(req.PlanID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListClients handles GET /api/users/:userId/clients.
//
// @Summary      List a therapist's clients
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "Therapist ID"
// @Success      200     {array}   domain.User
// @Failure      403     {object}  messageResponse
// @Router       /api/users/{userId}/clients [get]
func (h *UserHandler) ListClients(c echo.Context) error {
	clients, err := h.service.ListClients(c.Request().Context(), c.Param(middleware.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// SetViewingClient handles PUT /api/users/:userId/viewing-client.
//
// @Summary      Select the client a therapist is working with
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userId  path      string                true  "Therapist ID"
// @Param        body    body      viewingClientRequest  true  "Client, or null to clear"
// @Success      200     {object}  domain.User
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Router       /api/users/{userId}/viewing-client [put]
func (h *UserHandler) SetViewingClient(c echo.Context) error {
	var req viewingClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetViewingClient(c.Request().Context(), c.Param(middleware.UserIDParam), optional(req.ClientID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
