package service

import (
	"context"
	"fmt"

	"marketplace-service/internal/delivery"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reasons reported when a delivery check does not evaluate a zone
const (
	ReasonNoLocation = "no_location"
	ReasonNoZone     = "no_zone"
)

// DeliveryService answers "can this seller deliver to this customer"
type DeliveryService struct {
	profiles  ProfileRepository
	zones     ZoneRepository
	lookup    AddressLookup
	publisher EventPublisher
	failOpen  bool
	logger    *zap.Logger
}

// NewDeliveryService creates a new delivery service. lookup and publisher may be nil.
func NewDeliveryService(
	profiles ProfileRepository,
	zones ZoneRepository,
	lookup AddressLookup,
	publisher EventPublisher,
	failOpen bool,
) *DeliveryService {
	return &DeliveryService{
		profiles:  profiles,
		zones:     zones,
		lookup:    lookup,
		publisher: publisher,
		failOpen:  failOpen,
		logger:    util.GetLogger(),
	}
}

// EligibilityResult is the outcome of checking one seller for one customer.
// Filtered is false when no zone was evaluated; Reason then says why.
type EligibilityResult struct {
	CustomerID int64           `json:"customer_id"`
	SellerID   int64           `json:"seller_id"`
	Eligible   bool            `json:"eligible"`
	Filtered   bool            `json:"filtered"`
	Reason     string          `json:"reason,omitempty"`
	ZoneType   models.ZoneType `json:"zone_type,omitempty"`
	Quote      *delivery.Quote `json:"quote,omitempty"`
}

// IsDeliveryEligible evaluates a zone against a customer location
func (s *DeliveryService) IsDeliveryEligible(customer models.CustomerLocation, zone models.DeliveryZone) bool {
	eligible := delivery.IsDeliveryEligible(customer, zone)
	util.DeliveryEligibilityChecks.WithLabelValues(string(zone.Type()), resultLabel(eligible)).Inc()
	return eligible
}

// HaversineDistanceKm returns the great-circle distance in kilometres
func (s *DeliveryService) HaversineDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return delivery.HaversineDistanceKm(lat1, lng1, lat2, lng2)
}

// ResolveCustomerLocation returns the customer's delivery location, or nil if
// the customer does not exist. A missing administrative code is looked up from
// the profile address when an address client is configured.
func (s *DeliveryService) ResolveCustomerLocation(ctx context.Context, customerID int64) (*models.CustomerLocation, error) {
	ctx, span := util.StartSpan(ctx, "DeliveryService.ResolveCustomerLocation",
		attribute.Int64("customer_id", customerID))
	defer span.End()

	profile, err := s.profiles.GetProfile(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	loc := profile.Location()
	if loc.AdmCd != "" || profile.Address == "" || s.lookup == nil {
		return &loc, nil
	}

	code, err := s.lookup.LookupAdmCode(ctx, profile.Address)
	if err != nil {
		s.logger.Warn("Address lookup failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err))
		return &loc, nil
	}
	if code == "" {
		return &loc, nil
	}

	loc.AdmCd = code
	if err := s.profiles.UpdateProfileAdmCode(ctx, customerID, code); err != nil {
		s.logger.Warn("Failed to store resolved administrative code",
			zap.Int64("customer_id", customerID),
			zap.Error(err))
	}
	return &loc, nil
}

// CheckSeller decides whether the seller delivers to the customer and quotes
// the order amount. Returns nil if the customer does not exist.
func (s *DeliveryService) CheckSeller(ctx context.Context, customerID, sellerID, orderAmount int64) (*EligibilityResult, error) {
	ctx, span := util.StartSpan(ctx, "DeliveryService.CheckSeller",
		attribute.Int64("customer_id", customerID),
		attribute.Int64("seller_id", sellerID))
	defer span.End()

	loc, err := s.ResolveCustomerLocation(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}

	result := &EligibilityResult{CustomerID: customerID, SellerID: sellerID}

	zone, err := s.zones.GetDeliveryZone(ctx, sellerID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to get delivery zone: %w", err)
	}
	if zone == nil {
		util.DeliveryFilterSkipped.WithLabelValues(ReasonNoZone).Inc()
		result.Eligible = true
		result.Reason = ReasonNoZone
		return result, nil
	}

	result.ZoneType = zone.Type()
	if loc.IsEmpty() {
		util.DeliveryFilterSkipped.WithLabelValues(ReasonNoLocation).Inc()
		result.Reason = ReasonNoLocation
		if s.failOpen {
			result.Eligible = true
			return result, nil
		}
		result.Filtered = true
		return result, nil
	}

	quote := delivery.QuoteDelivery(*loc, *zone, orderAmount)
	util.DeliveryEligibilityChecks.WithLabelValues(string(zone.Type()), resultLabel(quote.Eligible)).Inc()

	result.Filtered = true
	result.Eligible = quote.Eligible
	result.Quote = &quote
	return result, nil
}

// FilterSellers returns the sellers among sellerIDs that deliver to the
// customer, in input order. Returns nil if the customer does not exist.
func (s *DeliveryService) FilterSellers(ctx context.Context, customerID int64, sellerIDs []int64) ([]int64, error) {
	ctx, span := util.StartSpan(ctx, "DeliveryService.FilterSellers",
		attribute.Int64("customer_id", customerID),
		attribute.Int("seller_count", len(sellerIDs)))
	defer span.End()

	loc, err := s.ResolveCustomerLocation(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}

	if loc.IsEmpty() {
		util.DeliveryFilterSkipped.WithLabelValues(ReasonNoLocation).Inc()
		if s.failOpen {
			s.logger.Debug("Customer has no location, skipping delivery filter",
				zap.Int64("customer_id", customerID))
			return append([]int64{}, sellerIDs...), nil
		}
	}

	zones, err := s.zones.GetDeliveryZones(ctx, sellerIDs)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to get delivery zones: %w", err)
	}

	deliverable := make([]int64, 0, len(sellerIDs))
	for _, id := range sellerIDs {
		zone, ok := zones[id]
		if !ok {
			util.DeliveryFilterSkipped.WithLabelValues(ReasonNoZone).Inc()
			deliverable = append(deliverable, id)
			continue
		}
		if s.IsDeliveryEligible(*loc, zone) {
			deliverable = append(deliverable, id)
		}
	}

	s.logger.Debug("Filtered sellers by delivery zone",
		zap.Int64("customer_id", customerID),
		zap.Int("requested", len(sellerIDs)),
		zap.Int("deliverable", len(deliverable)))
	return deliverable, nil
}

// ConfigureZone validates and stores a seller's delivery zone
func (s *DeliveryService) ConfigureZone(ctx context.Context, zone models.DeliveryZone) (*models.DeliveryZone, error) {
	ctx, span := util.StartSpan(ctx, "DeliveryService.ConfigureZone",
		attribute.Int64("seller_id", zone.SellerID))
	defer span.End()

	normalized, err := delivery.NormalizeZone(zone)
	if err != nil {
		return nil, err
	}

	if err := s.zones.UpsertDeliveryZone(ctx, &normalized); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to save delivery zone: %w", err)
	}

	util.DeliveryZonesConfigured.WithLabelValues(string(normalized.Type())).Inc()
	s.logger.Info("Delivery zone configured",
		zap.Int64("seller_id", normalized.SellerID),
		zap.String("zone_type", string(normalized.Type())))

	if s.publisher != nil {
		if err := s.publisher.PublishDeliveryZoneUpdated(ctx, normalized); err != nil {
			s.logger.Error("Failed to publish zone update",
				zap.Int64("seller_id", normalized.SellerID),
				zap.Error(err))
		}
	}

	return &normalized, nil
}

func resultLabel(eligible bool) string {
	if eligible {
		return "eligible"
	}
	return "ineligible"
}
