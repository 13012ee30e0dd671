package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

type ContentHandler struct {
	contentSvc ContentServiceInterface
}

func NewContentHandler(contentSvc ContentServiceInterface) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// @Summary List expressions
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.ExpressionCollectionResponse}
// @Router /api/v1/content/expressions [get]
func (h *ContentHandler) GetExpressions(c *fiber.Ctx) error {
	resp, err := h.contentSvc.GetExpressions()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List conversation scenarios
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.ScenarioCollectionResponse}
// @Router /api/v1/content/scenarios [get]
func (h *ContentHandler) GetScenarios(c *fiber.Ctx) error {
	resp, err := h.contentSvc.GetScenarios()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Get a scenario
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param scenarioId path string true "Scenario ID"
// @Success 200 {object} shared.Response{data=dto.ScenarioResponse}
// @Router /api/v1/content/scenarios/{scenarioId} [get]
func (h *ContentHandler) GetScenario(c *fiber.Ctx) error {
	resp, err := h.contentSvc.GetScenario(c.Params("scenarioId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Get skill progress for a scenario
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param scenarioId path string true "Scenario ID"
// @Success 200 {object} shared.Response{data=dto.SkillProgressResponse}
// @Router /api/v1/content/scenarios/{scenarioId}/progress [get]
func (h *ContentHandler) GetSkillProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.contentSvc.GetSkillProgress(userID, c.Params("scenarioId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Update skill progress for a scenario
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param scenarioId path string true "Scenario ID"
// @Param updateRequest body dto.UpdateSkillProgressRequest true "Progress changes"
// @Success 200 {object} shared.Response{data=dto.SkillProgressResponse}
// @Router /api/v1/content/scenarios/{scenarioId}/progress [put]
func (h *ContentHandler) UpdateSkillProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateSkillProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.contentSvc.UpdateSkillProgress(userID, c.Params("scenarioId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
