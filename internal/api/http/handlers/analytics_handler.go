package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/client-query-service/internal/analytics"
	"github.com/spec-kit/client-query-service/internal/api/dto"
	"github.com/spec-kit/client-query-service/internal/service"
)

// AnalyticsHandler serves the support dashboard aggregates.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Report GET /analytics?heading_status=.
func (h *AnalyticsHandler) Report(c *fiber.Ctx) error {
	headingStatus := c.Query("heading_status", analytics.FilterAll)
	report, err := h.service.Report(c.UserContext(), headingStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AnalyticsResponse{Report: report, HeadingStatus: headingStatus}})
}
