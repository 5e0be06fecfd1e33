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
)

// ingestionHandler exposes manual refreshes from the rate provider.
type ingestionHandler struct {
	ingestionService portssvc.IngestionSvcFacade
}

// registerIngestionRoutes registers routes that trigger ingestion.
func registerIngestionRoutes(rg *gin.RouterGroup, ingestionService portssvc.IngestionSvcFacade) {
	h := &ingestionHandler{ingestionService: ingestionService}

	ingestions := rg.Group("/ingestions")
	{
		ingestions.POST("", h.ingestAll)
		ingestions.POST("/:currency", h.ingest)
	}
}

// ingest godoc
// @Summary Refresh one currency from the provider
// @Description Fetches the full series for the currency and stores the dates not yet known. 202 means another refresh holds the currency.
// @Tags ingestions
// @Produce  json
// @Param   currency path string true "ISO 4217 currency code" example(USD)
// @Success 200 {object} dto.IngestionResponse
// @Success 202 {object} dto.IngestionResponse "Refresh already in progress"
// @Failure 400 {object} dto.ErrorResponse "Invalid currency"
// @Failure 500 {object} dto.ErrorResponse "Failed to store rates"
// @Router /ingestions/{currency} [post]
func (h *ingestionHandler) ingest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency := utils.NormalizeCurrencyCode(c.Param("currency"))
	if !utils.IsCurrencyCode(currency) {
		badRequest(c, "Currency must be a 3-letter ISO code")
		return
	}

	logger.Info("Received request to refresh rates", slog.String("currency", currency))
	result, err := h.ingestionService.Ingest(c.Request.Context(), currency)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Status == domain.IngestInProgress {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.ToIngestionResponse(*result))
}

// ingestAll godoc
// @Summary Refresh every supported currency
// @Description Runs one ingestion per supported currency. A failure for one currency does not affect the others.
// @Tags ingestions
// @Produce  json
// @Success 200 {array} dto.IngestionResponse
// @Router /ingestions [post]
func (h *ingestionHandler) ingestAll(c *gin.Context) {
	results := h.ingestionService.IngestAll(c.Request.Context())
	c.JSON(http.StatusOK, dto.ToIngestionResponses(results))
}
