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

// conversionHandler handles HTTP requests related to rates and conversions.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
}

func newConversionHandler(cs portssvc.ConversionSvcFacade) *conversionHandler {
	return &conversionHandler{
		conversionService: cs,
	}
}

// registerConversionRoutes registers rate, conversion and wallet value routes.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := newConversionHandler(conversionService)

	rg.GET("/rates/:from/:to", h.getRate)
	rg.POST("/convert", h.convert)
	rg.GET("/wallets/:walletID/value", h.getWalletValue)
}

// getRate returns the current exchange rate for a currency pair.
func (h *conversionHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Param("from")
	toCode := c.Param("to")

	rate, err := h.conversionService.GetRate(c.Request.Context(), fromCode, toCode)
	if err != nil {
		respondConversionError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// convert converts one smallest-unit amount between currencies.
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	converted, err := h.conversionService.Convert(c.Request.Context(), req.Amount, req.FromCurrencyCode, req.ToCurrencyCode)
	if err != nil {
		respondConversionError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToConvertResponse(req.Amount, req.FromCurrencyCode, req.ToCurrencyCode, converted))
}

// getWalletValue returns a wallet's balance expressed in the requested
// display currency (?currency=XYZ).
func (h *conversionHandler) getWalletValue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	walletID := c.Param("walletID")
	currencyCode := c.Query("currency")
	if currencyCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency query parameter is required"})
		return
	}

	value, err := h.conversionService.GetWalletValue(c.Request.Context(), userID, walletID, currencyCode)
	if err != nil {
		respondConversionError(c, logger, err, "Failed to compute wallet value")
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletValueResponse(walletID, currencyCode, value))
}

// respondConversionError maps conversion/rate errors to HTTP responses. Raw
// provider errors never reach clients; handlers return the sentinel text only.
func respondConversionError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCurrency):
		logger.Warn("Invalid currency code", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrNonPositiveRate), errors.Is(err, apperrors.ErrRateOutOfRange):
		logger.Warn("Rate rejected by validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Exchange rate failed validation"})
	case errors.Is(err, apperrors.ErrThrottled):
		logger.Warn("Rate provider throttled", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rate provider is busy. Please try again later."})
	case errors.Is(err, apperrors.ErrProvider):
		logger.Error("Rate provider failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Exchange rate provider is unavailable"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
