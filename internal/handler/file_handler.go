package handler

import (
	"net/http"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService service.FileService
}

func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	files := router.Group("/api/files", middleware.RequireAuth())
	{
		files.POST("", h.CreateFileLink)
		files.GET("", h.ListFileLinks)
		files.DELETE("/:id", h.DeleteFileLink)
	}
}

// CreateFileLink registers an external file URL in a workspace
// @Summary      Create file link
// @Tags         files
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateFileLinkRequest  true  "Create File Link Payload"
// @Success      201      {object}  response.Response{data=model.FileLink}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/files [post]
func (h *FileHandler) CreateFileLink(c *gin.Context) {
	var req service.CreateFileLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	file, err := h.fileService.Create(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, file))
}

// ListFileLinks lists file links in a workspace
// @Summary      List file links
// @Tags         files
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  true  "Workspace ID"
// @Success      200           {object}  response.Response{data=[]model.FileLink}
// @Failure      403           {object}  response.Response
// @Router       /api/files [get]
func (h *FileHandler) ListFileLinks(c *gin.Context) {
	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}

	files, err := h.fileService.ListByWorkspace(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, files))
}

// DeleteFileLink removes a file link
// @Summary      Delete file link
// @Tags         files
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "File Link ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/files/{id} [delete]
func (h *FileHandler) DeleteFileLink(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), currentActor(c), id); err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
