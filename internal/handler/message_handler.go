package handler

import (
	"net/http"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	messages := router.Group("/api/messages", middleware.RequireAuth())
	{
		messages.GET("", h.ListMessages)
		messages.POST("", h.PostMessage)
	}
}

// ListMessages lists workspace messages, oldest first
// @Summary      List messages
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  true  "Workspace ID"
// @Success      200           {object}  response.Response{data=[]model.Message}
// @Failure      403           {object}  response.Response
// @Router       /api/messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}

	messages, err := h.messageService.ListByWorkspace(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, messages))
}

// PostMessage posts a message and broadcasts it over the websocket hub
// @Summary      Post message
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PostMessageRequest  true  "Post Message Payload"
// @Success      201      {object}  response.Response{data=model.Message}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/messages [post]
func (h *MessageHandler) PostMessage(c *gin.Context) {
	var req service.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	message, err := h.messageService.Post(c.Request.Context(), currentActor(c), req)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, message))
}
