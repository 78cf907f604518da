package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/service"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/response"
)

// EmployeeHandler wires employee CRUD and lookup endpoints.
type EmployeeHandler struct {
	service *service.EmployeeService
}

// NewEmployeeHandler creates a new handler.
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: svc}
}

// List godoc
// @Summary List employees
// @Description Paginated employee listing with search and compliance filters
// @Tags Employees
// @Produce json
// @Param search query string false "Name or registration search"
// @Param sector query string false "Sector filter"
// @Param company query string false "Company filter"
// @Param course_id query string false "Course filter, combined with status"
// @Param status query string false "Training status filter"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	filter := models.EmployeeFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Sector:    strings.TrimSpace(c.Query("sector")),
		Company:   strings.TrimSpace(c.Query("company")),
		CourseID:  strings.TrimSpace(c.Query("course_id")),
		Status:    models.TrainingStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	if filter.Status != "" && !filter.Status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown training status"))
		return
	}

	employees, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get one employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// Lookup godoc
// @Summary Lookup employee by registration
// @Description Public visitor consultation by registration number
// @Tags Employees
// @Produce json
// @Param registration query string true "Registration number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/lookup [get]
func (h *EmployeeHandler) Lookup(c *gin.Context) {
	registration := strings.TrimSpace(c.Query("registration"))
	if registration == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "registration is required"))
		return
	}
	emp, err := h.service.Lookup(c.Request.Context(), registration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}
	emp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, emp)
}

// Update godoc
// @Summary Update employee fields
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [patch]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}
	emp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// UpdateTraining godoc
// @Summary Set a training completion date
// @Description Records or clears one course completion for an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateTrainingRequest true "Training payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id}/trainings [put]
func (h *EmployeeHandler) UpdateTraining(c *gin.Context) {
	var req service.UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid training payload"))
		return
	}
	emp, err := h.service.UpdateTraining(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Backup godoc
// @Summary Export full employee dataset
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees/backup [get]
func (h *EmployeeHandler) Backup(c *gin.Context) {
	employees, err := h.service.Backup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, nil)
}

// Sectors godoc
// @Summary Distinct sectors
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees/sectors [get]
func (h *EmployeeHandler) Sectors(c *gin.Context) {
	sectors, err := h.service.Sectors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sectors, nil)
}
