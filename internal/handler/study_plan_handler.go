package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studere/studere-api/internal/models"
	"github.com/studere/studere-api/internal/service"
	appErrors "github.com/studere/studere-api/pkg/errors"
	"github.com/studere/studere-api/pkg/response"
)

// StudyPlanHandler wires HTTP endpoints to the plan service.
type StudyPlanHandler struct {
	service *service.StudyPlanService
}

// NewStudyPlanHandler creates a new handler.
func NewStudyPlanHandler(svc *service.StudyPlanService) *StudyPlanHandler {
	return &StudyPlanHandler{service: svc}
}

// List godoc
// @Summary List study plans
// @Description List the current user's plans, optionally filtered by course
// @Tags StudyPlans
// @Produce json
// @Param course_id query string false "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /plans [get]
func (h *StudyPlanHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	plans, err := h.service.List(c.Request.Context(), claims.UserID, c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get a study plan with its topics
// @Tags StudyPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plans/{id} [get]
func (h *StudyPlanHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	plan, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, plan, nil)
}

// Create godoc
// @Summary Create a study plan
// @Description Create a plan with optional inline topics
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param payload body models.CreateStudyPlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /plans [post]
func (h *StudyPlanHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateStudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}

	plan, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, plan, nil)
}

// Generate godoc
// @Summary Generate a study plan with AI
// @Description Draft a plan for a subject via the configured model and persist it
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param payload body models.GeneratePlanRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /plans/generate [post]
func (h *StudyPlanHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	plan, err := h.service.Generate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, plan, nil)
}

// Update godoc
// @Summary Update a study plan
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body models.UpdateStudyPlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plans/{id} [patch]
func (h *StudyPlanHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateStudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}

	plan, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a study plan
// @Tags StudyPlans
// @Param id path string true "Plan ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plans/{id} [delete]
func (h *StudyPlanHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddTopic godoc
// @Summary Add a topic to a plan
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body models.CreateTopicRequest true "Topic payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plans/{id}/topics [post]
func (h *StudyPlanHandler) AddTopic(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}

	topic, err := h.service.AddTopic(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, topic, nil)
}

// UpdateTopic godoc
// @Summary Update a topic
// @Description Update a topic's fields or toggle its completion state
// @Tags StudyPlans
// @Accept json
// @Produce json
// @Param topicId path string true "Topic ID"
// @Param payload body models.UpdateTopicRequest true "Topic payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{topicId} [patch]
func (h *StudyPlanHandler) UpdateTopic(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}

	topic, err := h.service.UpdateTopic(c.Request.Context(), claims.UserID, c.Param("topicId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, topic, nil)
}

// DeleteTopic godoc
// @Summary Delete a topic
// @Tags StudyPlans
// @Param topicId path string true "Topic ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{topicId} [delete]
func (h *StudyPlanHandler) DeleteTopic(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteTopic(c.Request.Context(), claims.UserID, c.Param("topicId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
