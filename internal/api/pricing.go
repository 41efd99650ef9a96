package api

import (
	"net/http"

	"marketplace-service/internal/models"
	"marketplace-service/internal/pricing"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

type priceRequest struct {
	ProductID        int64               `json:"product_id"`
	BasePrice        int64               `json:"base_price"`
	MarkupPercentage float64             `json:"markup_percentage"`
	DiscountType     models.DiscountType `json:"discount_type"`
	DiscountValue    float64             `json:"discount_value"`
}

// calculatePrice runs the price formula without any policy
func (h *Handler) calculatePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	final, err := h.pricingService.CalculateFinalPrice(req.BasePrice, req.MarkupPercentage, req.DiscountType, req.DiscountValue)
	if err != nil {
		h.writeError(c, "calculate price", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"final_price": final,
	})
}

// previewRule checks a rule against the pricing policy without saving it
func (h *Handler) previewRule(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	rule, err := h.pricingService.PreviewRule(models.PricingRule{
		ProductID:        req.ProductID,
		BasePrice:        req.BasePrice,
		MarkupPercentage: req.MarkupPercentage,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
	})
	if err != nil {
		h.writeError(c, "preview pricing rule", err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// setPricingRule stores a product's pricing rule
func (h *Handler) setPricingRule(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var input service.PricingRuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestBody(c, err)
		return
	}

	rule, err := h.pricingService.SetPricingRule(c.Request.Context(), productID, input)
	if err != nil {
		h.writeError(c, "set pricing rule", err)
		return
	}
	if rule == nil {
		notFound(c, "product")
		return
	}

	c.JSON(http.StatusOK, rule)
}

type batchPricingRequest struct {
	ProductIDs []int64 `json:"product_ids" binding:"required"`
	pricing.Operation
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// applyBatchPricing applies one operation to many products
func (h *Handler) applyBatchPricing(c *gin.Context) {
	var req batchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := h.pricingService.ApplyBatchPricing(c.Request.Context(), service.BatchPricingRequest{
		ProductIDs:     req.ProductIDs,
		Operation:      req.Operation,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.writeError(c, "apply batch pricing", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
