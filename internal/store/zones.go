package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// zoneRow is the delivery_zones row before zone_value is decoded
type zoneRow struct {
	ID                    int64         `db:"id"`
	SellerID              int64         `db:"seller_id"`
	ZoneType              string        `db:"zone_type"`
	ZoneValue             []byte        `db:"zone_value"`
	MinOrderAmount        int64         `db:"min_order_amount"`
	DeliveryFee           int64         `db:"delivery_fee"`
	FreeDeliveryThreshold sql.NullInt64 `db:"free_delivery_threshold"`
	UpdatedAt             time.Time     `db:"updated_at"`
}

func (r zoneRow) toModel() (*models.DeliveryZone, error) {
	value, err := models.DecodeZoneValue(models.ZoneType(r.ZoneType), r.ZoneValue)
	if err != nil {
		return nil, fmt.Errorf("delivery zone for seller %d: %w", r.SellerID, err)
	}

	zone := &models.DeliveryZone{
		ID:             r.ID,
		SellerID:       r.SellerID,
		Value:          value,
		MinOrderAmount: r.MinOrderAmount,
		DeliveryFee:    r.DeliveryFee,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.FreeDeliveryThreshold.Valid {
		threshold := r.FreeDeliveryThreshold.Int64
		zone.FreeDeliveryThreshold = &threshold
	}
	return zone, nil
}

// GetDeliveryZone retrieves a seller's delivery zone, or nil if none is configured
func (s *Store) GetDeliveryZone(ctx context.Context, sellerID int64) (*models.DeliveryZone, error) {
	var row zoneRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM delivery_zones WHERE seller_id = $1", sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// GetDeliveryZones retrieves zones for several sellers keyed by seller ID.
// Sellers without a zone are absent from the map.
func (s *Store) GetDeliveryZones(ctx context.Context, sellerIDs []int64) (map[int64]models.DeliveryZone, error) {
	zones := make(map[int64]models.DeliveryZone, len(sellerIDs))
	if len(sellerIDs) == 0 {
		return zones, nil
	}

	query, args, err := sqlx.In("SELECT * FROM delivery_zones WHERE seller_id IN (?)", sellerIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var rows []zoneRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	for _, row := range rows {
		zone, err := row.toModel()
		if err != nil {
			return nil, err
		}
		zones[zone.SellerID] = *zone
	}
	return zones, nil
}

// UpsertDeliveryZone creates or replaces the seller's delivery zone
func (s *Store) UpsertDeliveryZone(ctx context.Context, zone *models.DeliveryZone) error {
	zoneType, raw, err := models.EncodeZoneValue(zone.Value)
	if err != nil {
		return err
	}

	var threshold sql.NullInt64
	if zone.FreeDeliveryThreshold != nil {
		threshold = sql.NullInt64{Int64: *zone.FreeDeliveryThreshold, Valid: true}
	}

	query := `
		INSERT INTO delivery_zones (seller_id, zone_type, zone_value, min_order_amount, delivery_fee, free_delivery_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (seller_id) DO UPDATE SET
			zone_type = EXCLUDED.zone_type,
			zone_value = EXCLUDED.zone_value,
			min_order_amount = EXCLUDED.min_order_amount,
			delivery_fee = EXCLUDED.delivery_fee,
			free_delivery_threshold = EXCLUDED.free_delivery_threshold,
			updated_at = NOW()
		RETURNING id, updated_at`

	var out struct {
		ID        int64     `db:"id"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := s.db.GetContext(ctx, &out, query,
		zone.SellerID, string(zoneType), string(raw), zone.MinOrderAmount, zone.DeliveryFee, threshold); err != nil {
		return err
	}

	zone.ID = out.ID
	zone.UpdatedAt = out.UpdatedAt
	return nil
}
