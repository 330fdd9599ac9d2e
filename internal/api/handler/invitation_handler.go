package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// InvitationHandler lets therapists invite clients.
type InvitationHandler struct {
	service ports.InvitationService
}

func NewInvitationHandler(service ports.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: service}
}

// Create handles POST /api/invitations.
//
// @Summary      Invite a client
// @Description  Creates a pending client bound to the inviting therapist and returns the token that activates it at registration.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        body  body      inviteRequest  true  "Invitation"
// @Success      201   {object}  inviteResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /api/invitations [post]
func (h *InvitationHandler) Create(c echo.Context) error {
	inviter, err := currentUser(c)
	if err != nil {
		return err
	}

	var req inviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inv, err := h.service.Invite(c.Request().Context(), inviter, ports.InviteInput{
		Email:       req.Email,
		Username:    req.Username,
		TherapistID: req.TherapistID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inviteResponse{User: inv.User, InviteToken: inv.Token})
}
