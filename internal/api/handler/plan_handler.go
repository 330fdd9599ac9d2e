package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

const planIDParam = "planId"

// PlanHandler serves the subscription plan catalogue.
type PlanHandler struct {
	service ports.PlanService
}

func NewPlanHandler(service ports.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// List handles GET /api/subscription-plans. Only active plans are public.
//
// @Summary      List subscription plans
// @Tags         plans
// @Produce      json
// @Success      200  {array}  domain.SubscriptionPlan
// @Router       /api/subscription-plans [get]
func (h *PlanHandler) List(c echo.Context) error {
	plans, err := h.service.List(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

// Get handles GET /api/subscription-plans/:planId.
//
// @Summary      Get a subscription plan
// @Tags         plans
// @Produce      json
// @Param        planId  path      string  true  "Plan ID"
// @Success      200     {object}  domain.SubscriptionPlan
// @Failure      404     {object}  messageResponse
// @Router       /api/subscription-plans/{planId} [get]
func (h *PlanHandler) Get(c echo.Context) error {
	plan, err := h.service.Get(c.Request().Context(), c.Param(planIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Create handles POST /api/subscription-plans.
//
// @Summary      Create a subscription plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        body  body      createPlanRequest  true  "Plan"
// @Success      201   {object}  domain.SubscriptionPlan
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Router       /api/subscription-plans [post]
func (h *PlanHandler) Create(c echo.Context) error {
	var req createPlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	plan, err := h.service.Create(c.Request().Context(), ports.CreatePlanInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Interval:    req.Interval,
		Features:    req.Features,
		Active:      active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

// Update handles PATCH /api/subscription-plans/:planId.
//
// @Summary      Update a subscription plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        planId  path      string             true  "Plan ID"
// @Param        body    body      updatePlanRequest  true  "Changed fields"
// @Success      200     {object}  domain.SubscriptionPlan
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/subscription-plans/{planId} [patch]
func (h *PlanHandler) Update(c echo.Context) error {
	var req updatePlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	upd := ports.PlanUpdate{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Features:    req.Features,
		Active:      req.Active,
	}
	if req.Interval != nil {
		interval, err := domain.ParseBillingInterval(*req.Interval)
		if err != nil {
			return err
		}
		upd.Interval = &interval
	}

	plan, err := h.service.Update(c.Request().Context(), c.Param(planIDParam), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /api/subscription-plans/:planId.
//
// @Summary      Delete a subscription plan
// @Tags         plans
// @Param        planId  path  string  true  "Plan ID"
// @Success      204
// @Failure      404     {object}  messageResponse
// @Router       /api/subscription-plans/{planId} [delete]
func (h *PlanHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(planIDParam)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
