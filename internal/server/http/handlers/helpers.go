package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/server/http/dto"
	"github.com/polkiloo/digistore/internal/server/http/middleware"
)

// CurrentAdmin extracts the authenticated admin username from context.
func CurrentAdmin(c *gin.Context) string {
	return c.GetString(middleware.AdminContextKey)
}

// dashboardActor is the audit actor for the current admin request.
func dashboardActor(c *gin.Context) string {
	return model.DashboardActor(CurrentAdmin(c))
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// writeError maps domain errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *domainErrors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, domainErrors.ErrNotPending):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "order already processed"})
	case errors.Is(err, domainErrors.ErrNotConfirmed),
		errors.Is(err, domainErrors.ErrProductUnavailable),
		errors.Is(err, domainErrors.ErrKeyInUse):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid username or password"})
	case errors.Is(err, domainErrors.ErrInvalidToken):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Invalid download link"})
	case errors.Is(err, domainErrors.ErrTokenExpired):
		c.JSON(http.StatusGone, dto.ErrorResponse{Error: "Download link has expired"})
	case errors.Is(err, domainErrors.ErrDownloadLimitReached):
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: "Download limit reached"})
	case errors.Is(err, domainErrors.ErrFileUnavailable):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "File not found"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
