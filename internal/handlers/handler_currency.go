package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/fx_reference_rates/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := &currencyHandler{rateService: rateService}

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
	}
}

// listCurrencies godoc
// @Summary List supported currencies
// @Description Retrieves the ISO codes of every currency with EUR reference rates
// @Tags currencies
// @Produce  json
// @Success 200 {array} string
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.rateService.ListCurrencies(c.Request.Context()))
}
