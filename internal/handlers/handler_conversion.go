package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/SscSPs/fx_reference_rates/internal/dto"
	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// conversionHandler handles HTTP requests for currency conversion.
type conversionHandler struct {
	conversionService portssvc.ConversionSvc
}

// registerConversionRoutes registers routes related to conversions.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvc) {
	h := &conversionHandler{conversionService: conversionService}

	rg.GET("/conversions", h.convert)
}

// convert godoc
// @Summary Convert a foreign amount into EUR
// @Description Divides the amount by the EUR reference rate resolved for the date, rounded half-up to 6 decimals.
// @Tags conversions
// @Produce  json
// @Param   currency query string true "ISO 4217 currency code" example(USD)
// @Param   amount query string true "Amount in the foreign currency, greater than zero" example(100)
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid currency, amount or date"
// @Failure 404 {object} dto.ErrorResponse "No rate on or before the date"
// @Failure 422 {object} dto.ErrorResponse "Stored rate cannot be used"
// @Failure 500 {object} dto.ErrorResponse "Failed to convert"
// @Router /conversions [get]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.ConversionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		badRequest(c, "Query parameters currency (3 letters), amount and date (YYYY-MM-DD) are required")
		return
	}

	currency := utils.NormalizeCurrencyCode(query.Currency)
	if !utils.IsCurrencyCode(currency) {
		badRequest(c, "Currency must be a 3-letter ISO code")
		return
	}
	amount, err := decimal.NewFromString(query.Amount)
	if err != nil {
		badRequest(c, "Amount must be a decimal number")
		return
	}
	if !amount.IsPositive() {
		badRequest(c, "Amount must be greater than zero")
		return
	}
	date, err := domain.ParseDate(query.Date)
	if err != nil {
		badRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	result, err := h.conversionService.Convert(c.Request.Context(), currency, amount, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponse(result))
}
