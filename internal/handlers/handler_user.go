package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finwise/finwise_backend/internal/apperrors"
	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
	"github.com/finwise/finwise_backend/internal/dto"
	"github.com/finwise/finwise_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests for the authenticated user and their
// currency migration.
type userHandler struct {
	userService      portssvc.UserSvcFacade
	migrationService portssvc.MigrationReaderSvc
}

func newUserHandler(us portssvc.UserSvcFacade, ms portssvc.MigrationReaderSvc) *userHandler {
	return &userHandler{
		userService:      us,
		migrationService: ms,
	}
}

// registerUserRoutes registers routes under /users/me.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, migrationService portssvc.MigrationReaderSvc) {
	h := newUserHandler(userService, migrationService)

	me := rg.Group("/users/me")
	{
		me.GET("", h.getMe)
		me.PUT("/preferences/currency", h.updatePreferredCurrency)
		me.GET("/currency-migration", h.getCurrencyMigration)
	}
}

func (h *userHandler) getMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("Failed to get user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updatePreferredCurrency changes the display currency and, when the target
// differs, starts the background re-denomination of the user's entities.
func (h *userHandler) updatePreferredCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdatePreferredCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePreferredCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, started, err := h.userService.SetPreferredCurrency(c.Request.Context(), userID, req.CurrencyCode)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCurrency):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrMigrationConflict):
			logger.Warn("Preference change rejected, migration already running")
			c.JSON(http.StatusConflict, gin.H{"error": "A currency migration is already in progress"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			logger.Error("Failed to update preferred currency", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferred currency"})
		}
		return
	}

	logger.Info("Preferred currency updated",
		slog.String("currency", user.PreferredCurrencyCode),
		slog.Bool("migration_started", started),
	)
	c.JSON(http.StatusOK, dto.PreferredCurrencyResponse{
		PreferredCurrency: user.PreferredCurrencyCode,
		MigrationStarted:  started,
	})
}

// getCurrencyMigration returns the user's most recent migration for polling.
func (h *userHandler) getCurrencyMigration(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	migration, err := h.migrationService.GetMigrationStatus(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No currency migration found"})
			return
		}
		logger.Error("Failed to get migration status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve migration status"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMigrationStatusResponse(migration))
}
