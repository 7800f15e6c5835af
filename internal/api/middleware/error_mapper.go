package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apierrors "github.com/scc-digitalhub/custom-resource-manager/internal/api/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
)

// ErrorMapper maps errors from different layers to appropriate HTTP responses
func ErrorMapper(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status, body := mapError(err, logger)
			c.JSON(status, body)
		}
	}
}

func mapError(err error, logger *zap.Logger) (int, types.ErrorResponse) {
	switch e := err.(type) {
	case validator.ValidationErrors:
		details := make([]types.Violation, 0, len(e))
		for _, fieldError := range e {
			details = append(details, types.Violation{
				Path:    fieldError.Namespace(),
				Rule:    fieldError.Tag(),
				Message: fieldError.Error(),
			})
		}
		return http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request parameters", Violations: details}
	case *apierrors.SerializationError:
		logger.Debug("API serialization error",
			zap.String("operation", e.Operation),
			zap.Error(e.Err))
		return http.StatusBadRequest, types.ErrorResponse{Error: e.Error()}
	case *errors.PermissionDeniedError:
		return http.StatusForbidden, types.ErrorResponse{Error: e.Error()}
	case *errors.NotFoundError:
		return http.StatusNotFound, types.ErrorResponse{Error: e.Error()}
	case *errors.InvalidArgumentError:
		return http.StatusBadRequest, types.ErrorResponse{Error: e.Error()}
	case *errors.ValidationFailedError:
		return http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:      "Resource validation failed",
			Violations: e.Violations,
		}
	case *errors.ConflictError:
		return http.StatusConflict, types.ErrorResponse{Error: e.Error()}
	case *errors.TransientError:
		logger.Warn("Object store temporarily unavailable", zap.String("operation", e.Operation), zap.Error(e.Err))
		return http.StatusServiceUnavailable, types.ErrorResponse{Error: e.Error()}
	case *errors.CanceledError:
		logger.Warn("Object store call canceled", zap.String("operation", e.Operation), zap.Error(e.Err))
		return http.StatusGatewayTimeout, types.ErrorResponse{Error: e.Error()}
	case *errors.MarshalingError:
		logger.Error("Marshaling error", zap.String("message", e.Message))
		return http.StatusInternalServerError, types.ErrorResponse{Error: "Data processing error"}
	}

	// typed errors wrapped further up keep their status
	var (
		notFound *errors.NotFoundError
		canceled *errors.CanceledError
	)
	switch {
	case stderrors.As(err, &notFound):
		return mapError(notFound, logger)
	case stderrors.As(err, &canceled):
		return mapError(canceled, logger)
	}

	logger.Error("Unhandled error", zap.Error(err))
	return http.StatusInternalServerError, types.ErrorResponse{Error: "Internal server error"}
}
