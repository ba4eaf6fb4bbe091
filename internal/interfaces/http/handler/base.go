package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/shared"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/erp/storesync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, c.GetString(logger.RequestIDKey)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts engine errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	requestID := c.GetString(logger.RequestIDKey)

	var syncErr *integration.SyncError
	if errors.As(err, &syncErr) {
		resp := dto.NewErrorResponse(syncErr.Code, syncErr.Message, requestID)
		resp.Error.Kind = string(syncErr.Kind)
		c.JSON(dto.StatusForKind(syncErr.Kind), resp)
		return
	}

	switch {
	case errors.Is(err, integration.ErrChannelNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Channel not found")
	case errors.Is(err, integration.ErrPassLocked):
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, "Another pass is running for this channel")
	case errors.Is(err, context.DeadlineExceeded):
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeTimeout, "The pass did not finish in time")
	default:
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			h.Error(c, http.StatusUnprocessableEntity, domainErr.Code, domainErr.Message)
			return
		}
		logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An internal error occurred")
	}
}

// channelID parses the :id path parameter
func (h *BaseHandler) channelID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid channel ID")
		return uuid.Nil, false
	}
	return id, true
}
