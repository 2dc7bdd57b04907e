package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soview/salesorders/internal/core/domain"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrBadRequest: http.StatusBadRequest,

	domain.ErrEmptyItems:          http.StatusUnprocessableEntity,
	domain.ErrEmptyCustomerName:   http.StatusUnprocessableEntity,
	domain.ErrEmptyDescription:    http.StatusUnprocessableEntity,
	domain.ErrInvalidQuantity:     http.StatusUnprocessableEntity,
	domain.ErrInvalidUnitPrice:    http.StatusUnprocessableEntity,
	domain.ErrInvalidStatus:       http.StatusUnprocessableEntity,
	domain.ErrDeliveryBeforeOrder: http.StatusUnprocessableEntity,
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for a request that failed
// boundary validation before reaching the core
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// handleError maps a core error to a status code; anything unmapped is an
// internal failure and is logged before the response goes out
func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
		h.logger.Error("error processing request", zap.Error(err),
			zap.String("path", ctx.FullPath()))
		err = domain.ErrInternal
	}
	ctx.AbortWithStatusJSON(statusCode, errorResponse{Error: err.Error()})
}

// handleSuccess sends a success response with the optional data
func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	if data != nil {
		ctx.JSON(http.StatusOK, data)
	} else {
		ctx.Status(http.StatusOK)
	}
}
