package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindtrack/cbt-api/internal/api/middleware"
	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// RecordIDParam names the record in /api/users/:userId/{kind}/:id routes.
const RecordIDParam = "id"

// RecordHandler serves CRUD for one record kind under /api/users/:userId.
// The route chain has already authorized the principal against :userId.
type RecordHandler[T any, PT domain.RecordPtr[T]] struct {
	service ports.RecordService[T]
	kind    domain.Kind
}

func NewRecordHandler[T any, PT domain.RecordPtr[T]](service ports.RecordService[T]) *RecordHandler[T, PT] {
	var zero T
	return &RecordHandler[T, PT]{service: service, kind: PT(&zero).Kind()}
}

// Kind is the URL segment served by the handler.
func (h *RecordHandler[T, PT]) Kind() domain.Kind { return h.kind }

// List handles GET /api/users/:userId/{kind}.
//
// @Summary      List a user's records
// @Tags         records
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        kind    path      string  true  "emotions, thoughts, goals, actions, journals, protective-factors, coping-strategies, resources or strategy-usages"
// @Success      200     {array}   object
// @Failure      401     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Router       /api/users/{userId}/{kind} [get]
func (h *RecordHandler[T, PT]) List(c echo.Context) error {
	recs, err := h.service.List(c.Request().Context(), c.Param(middleware.UserIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

// Get handles GET /api/users/:userId/{kind}/:id.
//
// @Summary      Get a record
// @Tags         records
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        kind    path      string  true  "Record kind"
// @Param        id      path      string  true  "Record ID"
// @Success      200     {object}  object
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/{kind}/{id} [get]
func (h *RecordHandler[T, PT]) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param(middleware.UserIDParam), c.Param(RecordIDParam))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Create handles POST /api/users/:userId/{kind}.
//
// @Summary      Create a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        kind    path      string  true  "Record kind"
// @Param        body    body      object  true  "Record fields"
// @Success      201     {object}  object
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Router       /api/users/{userId}/{kind} [post]
func (h *RecordHandler[T, PT]) Create(c echo.Context) error {
	rec := new(T)
	if err := bindAndValidate(c, rec); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), c.Param(middleware.UserIDParam), rec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/users/:userId/{kind}/:id. The body replaces the
// editable fields; identity and server-managed fields are kept.
//
// @Summary      Replace a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        userId  path      string  true  "Owner ID"
// @Param        kind    path      string  true  "Record kind"
// @Param        id      path      string  true  "Record ID"
// @Param        body    body      object  true  "Record fields"
// @Success      200     {object}  object
// @Failure      400     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/{kind}/{id} [put]
func (h *RecordHandler[T, PT]) Update(c echo.Context) error {
	updated, err := h.service.Update(c.Request().Context(), c.Param(middleware.UserIDParam), c.Param(RecordIDParam),
		func(rec *T) error {
			return bindAndValidate(c, rec)
		})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/users/:userId/{kind}/:id. Dependent records
// are removed with it.
//
// @Summary      Delete a record
// @Tags         records
// @Param        userId  path  string  true  "Owner ID"
// @Param        kind    path  string  true  "Record kind"
// @Param        id      path  string  true  "Record ID"
// @Success      204
// @Failure      403     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/users/{userId}/{kind}/{id} [delete]
func (h *RecordHandler[T, PT]) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param(middleware.UserIDParam), c.Param(RecordIDParam)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
