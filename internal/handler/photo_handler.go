package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/service"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/response"
)

// PhotoHandler manages the training evidence gallery.
type PhotoHandler struct {
	service *service.PhotoService
}

// NewPhotoHandler constructs the handler.
func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// List godoc
// @Summary List training photos
// @Tags Photos
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	photos, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, photos, nil)
}

// Save godoc
// @Summary Add or replace a training photo
// @Tags Photos
// @Accept json
// @Produce json
// @Param payload body service.SavePhotoRequest true "Photo payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /photos [post]
func (h *PhotoHandler) Save(c *gin.Context) {
	var req service.SavePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid photo payload"))
		return
	}
	photo, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photo)
}

// Delete godoc
// @Summary Delete a training photo
// @Tags Photos
// @Param id path string true "Photo ID"
// @Success 204 {object} response.Envelope
// @Router /photos/{id} [delete]
func (h *PhotoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
