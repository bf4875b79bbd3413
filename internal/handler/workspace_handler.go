package handler

import (
	"net/http"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) RegisterRoutes(router *gin.RouterGroup) {
	workspaces := router.Group("/api/workspaces", middleware.RequireAuth())
	{
		workspaces.POST("", h.CreateWorkspace)
		workspaces.GET("", h.ListWorkspaces)
		workspaces.POST("/:id/members", h.AddMember)
		workspaces.GET("/:id/members", h.ListMembers)
	}
}

// CreateWorkspace creates a workspace with the caller as first admin
// @Summary      Create workspace
// @Tags         workspaces
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWorkspaceRequest  true  "Create Workspace Payload"
// @Success      201      {object}  response.Response{data=model.Workspace}
// @Failure      400      {object}  response.Response
// @Router       /api/workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	var req service.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, workspace))
}

// ListWorkspaces lists the caller's workspaces
// @Summary      List my workspaces
// @Tags         workspaces
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Workspace}
// @Router       /api/workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	workspaces, err := h.workspaceService.ListMine(c.Request.Context(), currentActor(c))
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workspaces))
}

// AddMember enrolls an existing user into the workspace
// @Summary      Add workspace member
// @Tags         workspaces
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Workspace ID"
// @Param        payload  body      service.AddMemberRequest  true  "Add Member Payload"
// @Success      201      {object}  response.Response{data=model.WorkspaceMember}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/workspaces/{id}/members [post]
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	workspaceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	member, err := h.workspaceService.AddMember(c.Request.Context(), currentActor(c), workspaceID, req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, member))
}

// ListMembers lists workspace members with their users
// @Summary      List workspace members
// @Tags         workspaces
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Workspace ID"
// @Success      200  {object}  response.Response{data=[]model.WorkspaceMember}
// @Failure      403  {object}  response.Response
// @Router       /api/workspaces/{id}/members [get]
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, members))
}
