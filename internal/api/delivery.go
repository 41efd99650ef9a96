package api

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace-service/internal/delivery"
	"marketplace-service/internal/models"

	"github.com/gin-gonic/gin"
)

type locationRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	AdmCd string   `json:"adm_cd"`
}

func (r locationRequest) toModel() models.CustomerLocation {
	loc := models.CustomerLocation{AdmCd: r.AdmCd}
	if r.Lat != nil && r.Lng != nil {
		loc.Point = &models.GeoPoint{Lat: *r.Lat, Lng: *r.Lng}
	}
	return loc
}

type eligibilityRequest struct {
	Customer locationRequest     `json:"customer"`
	Zone     models.DeliveryZone `json:"zone"`
}

// checkEligibility evaluates an inline zone against an inline location
func (h *Handler) checkEligibility(c *gin.Context) {
	var req eligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, models.ErrZoneShape) {
			validationError(c, "zone_value", err)
			return
		}
		badRequestBody(c, err)
		return
	}
	if req.Zone.Value == nil {
		validationError(c, "zone", errors.New("zone is required"))
		return
	}

	customer := req.Customer.toModel()
	resp := gin.H{
		"eligible":  h.deliveryService.IsDeliveryEligible(customer, req.Zone),
		"zone_type": req.Zone.Type(),
	}
	if rz, ok := req.Zone.Value.(models.RadiusZone); ok && customer.Point != nil {
		resp["distance_km"] = h.deliveryService.HaversineDistanceKm(customer.Point.Lat, customer.Point.Lng, rz.Lat, rz.Lng)
	}
	c.JSON(http.StatusOK, resp)
}

// distance returns the great-circle distance between two points
func (h *Handler) distance(c *gin.Context) {
	names := []string{"lat1", "lng1", "lat2", "lng2"}
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(c.Query(name), 64)
		if err != nil {
			validationError(c, name, errors.New("must be a number"))
			return
		}
		values[i] = v
	}

	if !delivery.ValidCoordinates(values[0], values[1]) {
		validationError(c, "lat1", errors.New("coordinates out of range"))
		return
	}
	if !delivery.ValidCoordinates(values[2], values[3]) {
		validationError(c, "lat2", errors.New("coordinates out of range"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"distance_km": h.deliveryService.HaversineDistanceKm(values[0], values[1], values[2], values[3]),
	})
}

// checkSeller decides one seller for one customer
func (h *Handler) checkSeller(c *gin.Context) {
	customerID, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}
	sellerID, ok := parseIDParam(c, "seller_id", "seller")
	if !ok {
		return
	}

	var orderAmount int64
	if raw := c.Query("order_amount"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			validationError(c, "order_amount", errors.New("must be a non-negative integer"))
			return
		}
		orderAmount = v
	}

	result, err := h.deliveryService.CheckSeller(c.Request.Context(), customerID, sellerID, orderAmount)
	if err != nil {
		h.writeError(c, "check delivery", err)
		return
	}
	if result == nil {
		notFound(c, "customer")
		return
	}

	c.JSON(http.StatusOK, result)
}

type filterSellersRequest struct {
	SellerIDs []int64 `json:"seller_ids" binding:"required"`
}

// filterSellers keeps the sellers that deliver to the customer
func (h *Handler) filterSellers(c *gin.Context) {
	customerID, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req filterSellersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}

	sellers, err := h.deliveryService.FilterSellers(c.Request.Context(), customerID, req.SellerIDs)
	if err != nil {
		h.writeError(c, "filter sellers", err)
		return
	}
	if sellers == nil {
		notFound(c, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"seller_ids": sellers,
	})
}

// configureZone replaces a seller's delivery zone
func (h *Handler) configureZone(c *gin.Context) {
	sellerID, ok := parseIDParam(c, "id", "seller")
	if !ok {
		return
	}

	var zone models.DeliveryZone
	if err := c.ShouldBindJSON(&zone); err != nil {
		if errors.Is(err, models.ErrZoneShape) {
			validationError(c, "zone_value", err)
			return
		}
		badRequestBody(c, err)
		return
	}
	zone.SellerID = sellerID

	saved, err := h.deliveryService.ConfigureZone(c.Request.Context(), zone)
	if err != nil {
		h.writeError(c, "configure delivery zone", err)
		return
	}

	c.JSON(http.StatusOK, saved)
}
