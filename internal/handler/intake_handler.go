package handler

import (
	"net/http"
	"strconv"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type IntakeHandler struct {
	intakeService service.IntakeService
}

func NewIntakeHandler(intakeService service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

func (h *IntakeHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The intake form is filled in by prospects before they have an account,
	// so the start/step/submit endpoints are public.
	intake := router.Group("/api/intake")
	{
		intake.POST("", h.StartIntake)
		intake.PUT("/:id/steps/:step", h.SaveStep)
		intake.POST("/:id/submit", h.SubmitIntake)
		intake.GET("", middleware.RequireAuth(), h.ListIntake)
	}
}

// StartIntake opens a draft intake submission for a workspace
// @Summary      Start intake
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        payload  body      service.StartIntakeRequest  true  "Start Intake Payload"
// @Success      201      {object}  response.Response{data=model.IntakeSubmission}
// @Failure      400      {object}  response.Response
// @Router       /api/intake [post]
func (h *IntakeHandler) StartIntake(c *gin.Context) {
	var req service.StartIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.intakeService.Start(c.Request.Context(), req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, submission))
}

// SaveStep stores one step of the intake form
// @Summary      Save intake step
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Submission ID"
// @Param        step     path      int                        true  "Step index"
// @Param        payload  body      service.IntakeStepRequest  true  "Step Data"
// @Success      200      {object}  response.Response{data=model.IntakeSubmission}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/intake/{id}/steps/{step} [put]
func (h *IntakeHandler) SaveStep(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid step"))
		return
	}

	var req service.IntakeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submission, err := h.intakeService.SaveStep(c.Request.Context(), id, step, req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// SubmitIntake finalizes a submission and converts it into a client
// @Summary      Submit intake
// @Tags         intake
// @Produce      json
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  response.Response{data=model.IntakeSubmission}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/intake/{id}/submit [post]
func (h *IntakeHandler) SubmitIntake(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	submission, err := h.intakeService.Submit(c.Request.Context(), id)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submission))
}

// ListIntake lists intake submissions for workspace staff
// @Summary      List intake submissions
// @Tags         intake
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  true  "Workspace ID"
// @Success      200           {object}  response.Response{data=[]model.IntakeSubmission}
// @Failure      403           {object}  response.Response
// @Router       /api/intake [get]
func (h *IntakeHandler) ListIntake(c *gin.Context) {
	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}

	submissions, err := h.intakeService.ListByWorkspace(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submissions))
}
