package controllers

import (
	"errors"

	apperrors "catalog-service/common/errors"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toAppError classifies service errors into HTTP responses.
func toAppError(err error) *apperrors.Error {
	var (
		appErr   *apperrors.Error
		valErr   *services.ValidationError
		inUseErr *services.CategoryInUseError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &valErr):
		return apperrors.Validation(valErr.Errors)
	case errors.As(err, &inUseErr):
		return apperrors.Conflict(inUseErr.Error(), err)
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrJobNotFound),
		errors.Is(err, services.ErrSliderNotFound),
		errors.Is(err, services.ErrNoAvailablePrice):
		return apperrors.NotFound(rootMessage(err), err)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Not found", err)
	case errors.Is(err, services.ErrSlugTaken):
		return apperrors.Conflict(err.Error(), err)
	case errors.Is(err, services.ErrInvalidReassignment),
		errors.Is(err, services.ErrMissingHeader),
		errors.Is(err, services.ErrCSVParse),
		errors.Is(err, repository.ErrBatchTooLarge):
		return apperrors.BadRequest(err.Error(), err)
	default:
		return apperrors.Internal(err)
	}
}

// rootMessage returns the text of the sentinel so wrapped context is not exposed.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrCategoryNotFound,
		services.ErrProductNotFound,
		services.ErrJobNotFound,
		services.ErrSliderNotFound,
		services.ErrNoAvailablePrice,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func respondError(c *gin.Context, msg string, err error) {
	appErr := toAppError(err)
	if appErr.Code >= 500 {
		zap.L().Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	}
	apperrors.Respond(c, appErr)
}
