package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/SscSPs/fx_reference_rates/internal/dto"
	"github.com/SscSPs/fx_reference_rates/internal/middleware"
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/SscSPs/fx_reference_rates/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := &exchangeRateHandler{rateService: rateService}

	rates := rg.Group("/rates")
	{
		rates.GET("", h.listRates)
		rates.GET("/:currency", h.getRate)
	}
}

// listRates godoc
// @Summary List stored exchange rates
// @Description Pages through stored EUR reference rates, newest first. An empty store is loaded from the provider once.
// @Tags rates
// @Produce  json
// @Param   date query string false "Restrict to one date (YYYY-MM-DD)"
// @Param   page query int false "Page number, 1-based, at most 1000000" default(1)
// @Param   size query int false "Page size" default(20)
// @Success 200 {object} dto.ListRatesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} dto.ErrorResponse "No rate data available"
// @Failure 500 {object} dto.ErrorResponse "Failed to list rates"
// @Router /rates [get]
func (h *exchangeRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.ListRatesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for ListRates", slog.String("error", err.Error()))
		badRequest(c, "Invalid query parameters: date must be YYYY-MM-DD")
		return
	}

	pageReq, err := pagination.ParsePageRequest(query.Page, query.Size)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var date *time.Time
	if query.Date != "" {
		d, err := domain.ParseDate(query.Date)
		if err != nil {
			badRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		date = &d
	}

	page, err := h.rateService.GetRates(c.Request.Context(), date, pageReq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListRatesResponse(page))
}

// getRate godoc
// @Summary Get the exchange rate for a currency on a date
// @Description Returns the stored rate for the date, refreshing from the provider once on a miss and otherwise falling back to the latest earlier rate.
// @Tags rates
// @Produce  json
// @Param   currency path string true "ISO 4217 currency code" example(USD)
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ResolvedRateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid currency or date"
// @Failure 404 {object} dto.ErrorResponse "No rate on or before the date"
// @Failure 500 {object} dto.ErrorResponse "Failed to resolve rate"
// @Router /rates/{currency} [get]
func (h *exchangeRateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency := utils.NormalizeCurrencyCode(c.Param("currency"))
	if !utils.IsCurrencyCode(currency) {
		badRequest(c, "Currency must be a 3-letter ISO code")
		return
	}

	var query dto.GetRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind query for GetRate", slog.String("error", err.Error()))
		badRequest(c, "Query parameter date is required in YYYY-MM-DD format")
		return
	}
	date, err := domain.ParseDate(query.Date)
	if err != nil {
		badRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	resolved, err := h.rateService.ResolveRate(c.Request.Context(), currency, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResolvedRateResponse(resolved))
}
