package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lmarchal/robeo-contracts/internal/http/middleware"
	"github.com/lmarchal/robeo-contracts/internal/model"
	"github.com/lmarchal/robeo-contracts/internal/money"
	"github.com/lmarchal/robeo-contracts/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	quotes    *service.QuoteService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, quotes *service.QuoteService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, quotes: quotes, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/catalog/packages", h.listPackages)
	protected.GET("/catalog/addons", h.listAddons)
	protected.GET("/catalog/contract-types", h.listContractTypes)

	protected.GET("/dresses/availability", h.checkAvailability)
	protected.GET("/dresses/:id/quote", h.quotePrice)

	protected.POST("/contracts/preview", h.previewContract)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts/:id/pdf", h.contractPDF)
	protected.POST("/contracts/export", h.exportContracts)
}

func (h *Handler) listPackages(c *gin.Context) {
	packages, err := h.contracts.ListPackages(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

func (h *Handler) listAddons(c *gin.Context) {
	addons, err := h.contracts.ListAddons(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, addons)
}

func (h *Handler) listContractTypes(c *gin.Context) {
	types, err := h.contracts.ListContractTypes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) checkAvailability(c *gin.Context) {
	dressIDs, err := parseUUIDList(c.Query("dress_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dress_ids"})
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return
	}

	forRange, today, err := h.contracts.CheckAvailability(c.Request.Context(), dressIDs, start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"range":          forRange,
		"reserved_today": today,
	})
}

func (h *Handler) quotePrice(c *gin.Context) {
	dressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dress id"})
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return
	}

	quote, err := h.quotes.QuotePrice(c.Request.Context(), dressID, start, end)
	if err != nil {
		if errors.Is(err, service.ErrQuoteUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"final_price_ht":  quote.FinalPriceHT,
		"final_price_ttc": quote.FinalPriceTTC,
		"duration_days":   quote.DurationDays,
	})
}

// amount accepts the two paid fields either as JSON numbers or as the raw
// back-office input ("1 234,50"); an empty string counts as absent.
type amount struct {
	value *float64
}

func (a *amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		value, ok := money.ParseAmount(raw)
		if !ok {
			return fmt.Errorf("invalid amount %q", raw)
		}
		a.value = &value
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	a.value = &value
	return nil
}

type draftRequest struct {
	Mode           string   `json:"mode" binding:"required"`
	DressIDs       []string `json:"dress_ids" binding:"required"`
	PackageID      *string  `json:"package_id"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	CustomerID     *string  `json:"customer_id"`
	AddonIDs       []string `json:"addon_ids"`
	PaymentMethod  string   `json:"payment_method"`
	DepositPaidTTC amount   `json:"deposit_paid_ttc"`
	CautionPaidTTC amount   `json:"caution_paid_ttc"`
}

func (h *Handler) previewContract(c *gin.Context) {
	input, ok := h.bindDraft(c)
	if !ok {
		return
	}
	preview, err := h.contracts.Preview(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *Handler) createContract(c *gin.Context) {
	input, ok := h.bindDraft(c)
	if !ok {
		return
	}
	contract, err := h.contracts.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) contractPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	name, content, err := h.contracts.Document(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+name+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

type exportRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

func (h *Handler) exportContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	name, content, err := h.contracts.Export(c.Request.Context(), principal, start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+name+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *Handler) bindDraft(c *gin.Context) (service.DraftInput, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return service.DraftInput{}, false
	}

	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.DraftInput{}, false
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode"})
		return service.DraftInput{}, false
	}

	input := service.DraftInput{
		Mode:           mode,
		PaymentMethod:  req.PaymentMethod,
		DepositPaidTTC: req.DepositPaidTTC.value,
		CautionPaidTTC: req.CautionPaidTTC.value,
		Principal:      principal,
	}

	for _, raw := range req.DressIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dress id"})
			return service.DraftInput{}, false
		}
		input.DressIDs = append(input.DressIDs, id)
	}
	for _, raw := range req.AddonIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid addon id"})
			return service.DraftInput{}, false
		}
		input.AddonIDs = append(input.AddonIDs, id)
	}
	if req.PackageID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*req.PackageID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package_id"})
			return service.DraftInput{}, false
		}
		input.PackageID = &id
	}
	if req.CustomerID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*req.CustomerID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return service.DraftInput{}, false
		}
		input.CustomerID = &id
	}
	if req.Start != "" {
		start, err := parseDate(req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return service.DraftInput{}, false
		}
		input.Start = start
	}
	if req.End != "" {
		end, err := parseDate(req.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return service.DraftInput{}, false
		}
		input.End = end
	}
	return input, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("contract request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseMode(raw string) (model.RentalMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily":
		return model.ModeDaily, nil
	case "package":
		return model.ModePackage, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseUUIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, service.ErrInvalidInput
	}
	return ids, nil
}
