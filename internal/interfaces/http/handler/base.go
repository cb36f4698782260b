package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/shared"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/interfaces/http/dto"
)

// BaseHandler provides common response helpers for HTTP handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

func (h BaseHandler) requestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// Success sends a 200 response with data
func (h BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, page, pageSize int, total int64) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with data
func (h BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the status derived from the code
func (h BaseHandler) Error(c *gin.Context, code string, message string) {
	status := dto.GetHTTPStatus(code)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, h.requestID(c)))
}

// ErrorWithStatus sends an error response with an explicit status
func (h BaseHandler) ErrorWithStatus(c *gin.Context, status int, code string, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, h.requestID(c)))
}

// BadRequest sends a 400 response
func (h BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithStatus(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithStatus(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 response
func (h BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithStatus(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response
func (h BaseHandler) Forbidden(c *gin.Context, message string) {
	h.ErrorWithStatus(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// Conflict sends a 409 response
func (h BaseHandler) Conflict(c *gin.Context, message string) {
	h.ErrorWithStatus(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends a 422 response
func (h BaseHandler) UnprocessableEntity(c *gin.Context, code string, message string) {
	h.ErrorWithStatus(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 response and logs the underlying error
func (h BaseHandler) InternalError(c *gin.Context, err error) {
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.logger.Error("internal error",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", h.requestID(c)),
		zap.Error(err))
	h.ErrorWithStatus(c, http.StatusInternalServerError, dto.ErrCodeInternal, "internal server error")
}

// HandleDomainError maps a domain error to an HTTP error response.
// Unknown errors become 500 with a generic message.
func (h BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(code, domainErr.Message, h.requestID(c)))
		return
	}

	h.InternalError(c, err)
}
