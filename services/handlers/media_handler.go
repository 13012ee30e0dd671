package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/spectrum-bridge/spectrum_api/shared"
)

type MediaHandler struct {
	mediaSvc MediaServiceInterface
}

func NewMediaHandler(mediaSvc MediaServiceInterface) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// @Summary Upload an expression image
// @Description Adds an image to the expression corpus. The label is the accepted answer.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param label formData string true "Expression label"
// @Param image formData file true "Expression image"
// @Success 201 {object} shared.Response{data=dto.UploadExpressionResponse}
// @Router /api/v1/media/expressions [post]
func (h *MediaHandler) UploadExpression(c *fiber.Ctx) error {
	label := c.FormValue("label")

	file, err := c.FormFile("image")
	if err != nil {
		return shared.NewBadRequestError(err, "Image file is required")
	}

	resp, err := h.mediaSvc.UploadExpression(label, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Expression uploaded", resp)
}
