package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/client-query-service/internal/api/dto"
	"github.com/spec-kit/client-query-service/internal/auth"
	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/service"
	apperrors "github.com/spec-kit/client-query-service/pkg/util/errorutil"
)

// QueriesHandler manages ticket endpoints for clients and support.
type QueriesHandler struct {
	service *service.QueryService
}

// NewQueriesHandler constructs handler.
func NewQueriesHandler(queryService *service.QueryService) *QueriesHandler {
	return &QueriesHandler{service: queryService}
}

// Submit POST /queries.
func (h *QueriesHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	id, err := h.service.Submit(c.UserContext(), principal.Identity, service.SubmitInput{
		Email:       req.Email,
		Mobile:      req.Mobile,
		Heading:     req.Heading,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"query_id": id}})
}

// List GET /queries?status=&heading=.
func (h *QueriesHandler) List(c *fiber.Ctx) error {
	filter := service.QueryFilter{
		Status:  c.Query("status"),
		Heading: c.Query("heading"),
	}
	queries, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.QueryResponse, 0, len(queries))
	for _, q := range queries {
		items = append(items, dto.NewQueryResponse(q))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Headings GET /queries/headings.
func (h *QueriesHandler) Headings(c *fiber.Ctx) error {
	headings, err := h.service.Headings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": headings})
}

// Close POST /queries/:id/close.
func (h *QueriesHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id := c.Params("id")
	outcome, err := h.service.Close(c.UserContext(), principal.Identity, id)
	if err != nil {
		return err
	}
	if outcome == domain.CloseOutcomeNotFound {
		return apperrors.NewNotFound("query", map[string]any{"query_id": id})
	}
	return c.JSON(fiber.Map{"data": dto.CloseQueryResponse{QueryID: id, Outcome: outcome}})
}
