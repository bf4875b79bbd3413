package handler

import (
	"errors"
	"net/http"

	"clienthub/internal/model"
	"clienthub/internal/service"
	"clienthub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// currentActor rebuilds the request actor from the values the auth middleware
// stored on the context.
func currentActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			actor.ID, _ = uuid.Parse(s)
		}
	}
	if v, ok := c.Get("userEmail"); ok {
		actor.Email, _ = v.(string)
	}
	if v, ok := c.Get("userRole"); ok {
		actor.Role, _ = v.(string)
	}
	return actor
}

// pathUUID parses the :id style path parameter, writing a 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses a required UUID query parameter, writing a 400 on failure.
func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, name+" is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
