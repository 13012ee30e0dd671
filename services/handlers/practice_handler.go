package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

type PracticeHandler struct {
	practiceSvc PracticeServiceInterface
}

func NewPracticeHandler(practiceSvc PracticeServiceInterface) *PracticeHandler {
	return &PracticeHandler{practiceSvc: practiceSvc}
}

// @Summary Start a practice session
// @Description Open a new session for a feature: expression_quiz, ai_scenario or social_drill
// @Tags practice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param feature path string true "Practice feature"
// @Param startRequest body dto.StartPracticeRequest false "Session options"
// @Success 201 {object} shared.Response{data=dto.StartPracticeResponse}
// @Router /api/v1/practice/{feature}/start [post]
func (h *PracticeHandler) StartSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	feature := c.Params("feature")

	var req dto.StartPracticeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.practiceSvc.StartSession(c.Context(), userID, feature, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Session started", resp)
}

// @Summary Get the current item
// @Description Returns the item to answer next, without answer fields
// @Tags practice
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.CurrentItemResponse}
// @Router /api/v1/practice/sessions/{sessionId}/current [get]
func (h *PracticeHandler) GetCurrentItem(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	sessionID := c.Params("sessionId")

	resp, err := h.practiceSvc.GetCurrentItem(userID, sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Submit an answer
// @Description Score the answer against the current item and advance on success
// @Tags practice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param answerRequest body dto.SubmitAnswerRequest true "The answer"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswerResponse}
// @Router /api/v1/practice/sessions/{sessionId}/answer [post]
func (h *PracticeHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	sessionID := c.Params("sessionId")

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.practiceSvc.SubmitAnswer(c.Context(), userID, sessionID, req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Close a practice session
// @Description Finalize the session and return points and a summary. Idempotent.
// @Tags practice
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ClosePracticeResponse}
// @Router /api/v1/practice/sessions/{sessionId}/close [post]
func (h *PracticeHandler) CloseSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	sessionID := c.Params("sessionId")

	resp, err := h.practiceSvc.CloseSession(c.Context(), userID, sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
