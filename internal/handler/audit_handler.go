package handler

import (
	"net/http"

	"clienthub/internal/middleware"
	"clienthub/internal/service"
	"clienthub/pkg/pagination"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit-logs", middleware.RequireAuth())
	{
		audit.GET("", h.ListAuditLogs)
	}
}

// ListAuditLogs lists audit entries for a workspace, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        workspace_id  query     string  true   "Workspace ID"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Page size"
// @Success      200           {object}  response.Response{data=[]model.AuditLog}
// @Failure      403           {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	workspaceID, ok := queryUUID(c, "workspace_id")
	if !ok {
		return
	}

	params := pagination.Parse(c)
	logs, total, err := h.auditService.List(c.Request.Context(), currentActor(c), workspaceID, params.Page, params.Limit)
	if err != nil {
		code := statusForError(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
