package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/pkg/response"
)

// CourseHandler serves the regulated course catalog.
type CourseHandler struct{}

// NewCourseHandler constructs the handler.
func NewCourseHandler() *CourseHandler {
	return &CourseHandler{}
}

type courseView struct {
	models.Course
	Expires bool `json:"expires"`
}

// List godoc
// @Summary List catalog courses
// @Description Returns every regulated course with its validity period
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	views := make([]courseView, 0, len(catalog.Courses))
	for _, course := range catalog.Courses {
		views = append(views, courseView{Course: course, Expires: course.Expires()})
	}
	response.JSON(c, http.StatusOK, views, nil)
}
