package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

type DialogueHandler struct {
	dialogueSvc DialogueServiceInterface
}

func NewDialogueHandler(dialogueSvc DialogueServiceInterface) *DialogueHandler {
	return &DialogueHandler{dialogueSvc: dialogueSvc}
}

// @Summary Start a conversation coach session
// @Description Opens or resumes a coach session for the scenario. Pass restart=true to discard the open session and begin again.
// @Tags dialogue
// @Produce json
// @Security BearerAuth
// @Param scenarioId path string true "Scenario ID"
// @Param restart query bool false "Discard any open session for this scenario"
// @Success 201 {object} shared.Response{data=dto.StartDialogueResponse}
// @Router /api/v1/dialogue/conversation/{scenarioId}/start [post]
func (h *DialogueHandler) StartConversation(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	scenarioID := c.Params("scenarioId")
	restart := c.QueryBool("restart")

	resp, err := h.dialogueSvc.StartConversation(userID, scenarioID, restart)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Session ready", resp)
}

// @Summary Start a therapy session
// @Description Opens or resumes the user's therapy session
// @Tags dialogue
// @Produce json
// @Security BearerAuth
// @Success 201 {object} shared.Response{data=dto.StartDialogueResponse}
// @Router /api/v1/dialogue/therapy/start [post]
func (h *DialogueHandler) StartTherapy(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.dialogueSvc.StartTherapy(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Session ready", resp)
}

// @Summary Send a dialogue message
// @Tags dialogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageRequest body dto.DialogueMessageRequest true "Message"
// @Success 200 {object} shared.Response{data=dto.DialogueMessageResponse}
// @Router /api/v1/dialogue/message [post]
func (h *DialogueHandler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.DialogueMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.dialogueSvc.SendMessage(c.Context(), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Close a dialogue session
// @Description Ends the session and stores a report. Idempotent.
// @Tags dialogue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param closeRequest body dto.CloseDialogueRequest true "Session to close"
// @Success 200 {object} shared.Response{data=dto.CloseDialogueResponse}
// @Router /api/v1/dialogue/close [post]
func (h *DialogueHandler) CloseDialogue(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CloseDialogueRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.dialogueSvc.CloseDialogue(c.Context(), userID, req.SessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List session reports
// @Description Reports for the caller, or for a linked user via the user_id query parameter
// @Tags dialogue
// @Produce json
// @Security BearerAuth
// @Param feature query string false "Dialogue feature (conversation or therapy)"
// @Param user_id query string false "Linked user whose reports to read"
// @Success 200 {object} shared.Response{data=[]dto.DialogueReportResponse}
// @Router /api/v1/dialogue/reports [get]
func (h *DialogueHandler) GetReports(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role, _ := c.Locals(shared.UserRole).(string)

	feature := c.Query("feature", shared.DialogueTherapy)
	targetUserID := c.Query("user_id")

	resp, err := h.dialogueSvc.GetReports(userID, role, targetUserID, feature)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
