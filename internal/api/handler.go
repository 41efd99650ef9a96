package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/delivery"
	"marketplace-service/internal/models"
	"marketplace-service/internal/pricing"
	"marketplace-service/internal/recipe"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessCheck is a dependency probed by /ready
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	deliveryService *service.DeliveryService
	recipeService   *service.RecipeService
	pricingService  *service.PricingService
	checks          []ReadinessCheck
	logger          *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	deliveryService *service.DeliveryService,
	recipeService *service.RecipeService,
	pricingService *service.PricingService,
	checks ...ReadinessCheck,
) *Handler {
	return &Handler{
		deliveryService: deliveryService,
		recipeService:   recipeService,
		pricingService:  pricingService,
		checks:          checks,
		logger:          util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/delivery/eligibility", h.checkEligibility)
		v1.GET("/delivery/distance", h.distance)
		v1.GET("/customers/:id/sellers/:seller_id/delivery", h.checkSeller)
		v1.POST("/customers/:id/deliverable-sellers", h.filterSellers)
		v1.PUT("/sellers/:id/delivery-zone", h.configureZone)

		v1.GET("/recipes/:id/calculate", h.calculateRecipe)

		v1.POST("/pricing/calculate", h.calculatePrice)
		v1.POST("/pricing/preview", h.previewRule)
		v1.POST("/pricing/batch", h.applyBatchPricing)
		v1.PUT("/products/:id/pricing-rule", h.setPricingRule)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": check.Name,
				"details":    err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func parseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + label + " ID",
		})
		return 0, false
	}
	return id, true
}

func badRequestBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func notFound(c *gin.Context, entity string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": entity + " not found",
		entity:  nil,
	})
}

// writeError maps service errors onto HTTP responses
func (h *Handler) writeError(c *gin.Context, action string, err error) {
	var (
		recipeErr   *recipe.ValidationError
		pricingErr  *pricing.ValidationError
		deliveryErr *delivery.ValidationError
		violation   *pricing.PolicyViolation
	)

	switch {
	case errors.As(err, &recipeErr):
		validationError(c, recipeErr.Field, err)
	case errors.As(err, &pricingErr):
		validationError(c, pricingErr.Field, err)
	case errors.As(err, &deliveryErr):
		validationError(c, deliveryErr.Field, err)
	case errors.Is(err, models.ErrZoneShape):
		validationError(c, "zone_value", err)
	case errors.As(err, &violation):
		body := gin.H{
			"error":   "Pricing policy violation",
			"bound":   violation.Bound,
			"limit":   violation.Limit,
			"details": err.Error(),
		}
		if violation.ProductID != 0 {
			body["product_id"] = violation.ProductID
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, service.ErrBatchInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Request in progress",
			"details": err.Error(),
		})
	default:
		h.logger.Error("Request failed",
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to " + action,
			"details": err.Error(),
		})
	}
}

func validationError(c *gin.Context, field string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"field":   field,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
