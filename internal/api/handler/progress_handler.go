package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// ProgressHandler serves status changes, completion, feedback and strategy
// usages on a user's records.
type ProgressHandler struct {
	service ports.ProgressService
}

func NewProgressHandler(service ports.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func owner(c echo.Context) string { return c.Param(middleware.UserIDParam) }

// SetGoalStatus handles PATCH /api/users/:userId/goals/:id/status.
//
// @Summary      Change a goal's status
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        userId  path      string             true  "Owner ID"
// @Param        id      path      string             true  "Goal ID"
// @Param        body    body      goalStatusRequest  true  "New status"
// @Success      200     {object}  domain.Goal
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/goals/{id}/status [patch]
func (h *ProgressHandler) SetGoalStatus(c echo.Context) error {
	var req goalStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	status, err := domain.ParseGoalStatus(req.Status)
	if err != nil {
		return err
	}

	goal, err := h.service.SetGoalStatus(c.Request().Context(), owner(c), c.Param(RecordIDParam), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, goal)
}

// AddMilestone handles POST /api/users/:userId/goals/:id/milestones.
//
// @Summary      Add a milestone to a goal
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        userId  path      string            true  "Owner ID"
// @Param        id      path      string            true  "Goal ID"
// @Param        body    body      milestoneRequest  true  "Milestone"
// @Success      201     {object}  domain.Goal
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/goals/{id}/milestones [post]
func (h *ProgressHandler) AddMilestone(c echo.Context) error {
	var req milestoneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	goal, err := h.service.AddMilestone(c.Request().Context(), owner(c), c.Param(RecordIDParam), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, goal)
}

// CompleteMilestone handles PATCH /api/users/:userId/goals/:id/milestones/:milestoneId/complete.
//
// @Summary      Complete a milestone
// @Tags         progress
// @Produce      json
// @Param        userId       path      string  true  "Owner ID"
// @Param        id           path      string  true  "Goal ID"
// @Param        milestoneId  path      string  true  "Milestone ID"
// @Success      200          {object}  domain.Goal
// @Failure      403          {object}  messageResponse
// @Failure      404          {object}  messageResponse
// @Router       /api/users/{userId}/goals/{id}/milestones/{milestoneId}/complete [patch]
func (h *ProgressHandler) CompleteMilestone(c echo.Context) error {
	goal, err := h.service.CompleteMilestone(c.Request().Context(), owner(c), c.Param(RecordIDParam), c.Param("milestoneId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, goal)
}

// AddGoalFeedback handles POST /api/users/:userId/goals/:id/feedback.
//
// @Summary      Give feedback on a client's goal
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        userId  path      string          true  "Owner ID"
// @Param        id      path      string          true  "Goal ID"
// @Param        body    body      commentRequest  true  "Feedback"
// @Success      201     {object}  domain.Goal
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/goals/{id}/feedback [post]
func (h *ProgressHandler) AddGoalFeedback(c echo.Context) error {
	author, err := currentUser(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	goal, err := h.service.AddGoalFeedback(c.Request().Context(), author, owner(c), c.Param(RecordIDParam), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, goal)
}

// CompleteAction handles PATCH /api/users/:userId/actions/:id/complete.
//
// @Summary      Complete an action
// @Tags         progress
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        id      path      string  true  "Action ID"
// @Success      200     {object}  domain.Action
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/actions/{id}/complete [patch]
func (h *ProgressHandler) CompleteAction(c echo.Context) error {
	action, err := h.service.CompleteAction(c.Request().Context(), owner(c), c.Param(RecordIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, action)
}

// AddJournalComment handles POST /api/users/:userId/journals/:id/comments.
//
// @Summary      Comment on a journal entry
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        userId  path      string          true  "Owner ID"
// @Param        id      path      string          true  "Journal entry ID"
// @Param        body    body      commentRequest  true  "Comment"
// @Success      201     {object}  domain.JournalEntry
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/journals/{id}/comments [post]
func (h *ProgressHandler) AddJournalComment(c echo.Context) error {
	author, err := currentUser(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := h.service.AddJournalComment(c.Request().Context(), author, owner(c), c.Param(RecordIDParam), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// AddStrategyUsage handles POST /api/users/:userId/thoughts/:id/strategy-usages.
//
// @Summary      Record a strategy applied to a thought
// @Tags         progress
// @Accept       json
// @Produce      json
// @Param        userId  path      string                true  "Owner ID"
// @Param        id      path      string                true  "Thought record ID"
// @Param        body    body      domain.StrategyUsage  true  "Usage"
// @Success      201     {object}  domain.StrategyUsage
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/thoughts/{id}/strategy-usages [post]
func (h *ProgressHandler) AddStrategyUsage(c echo.Context) error {
	var usage domain.StrategyUsage
	if err := bindAndValidate(c, &usage); err != nil {
		return err
	}

	created, err := h.service.AddStrategyUsage(c.Request().Context(), owner(c), c.Param(RecordIDParam), &usage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// ListStrategyUsages handles GET /api/users/:userId/thoughts/:id/strategy-usages.
//
// @Summary      List strategies applied to a thought
// @Tags         progress
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        id      path      string  true  "Thought record ID"
// @Success      200     {array}   domain.StrategyUsage
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/thoughts/{id}/strategy-usages [get]
func (h *ProgressHandler) ListStrategyUsages(c echo.Context) error {
	usages, err := h.service.ListStrategyUsages(c.Request().Context(), owner(c), c.Param(RecordIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usages)
}
