package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// NewBaseEvent stamps a fresh event ID and timestamp
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// PublishDeliveryZoneUpdated publishes DeliveryZoneUpdated event
func (ep *EventPublisher) PublishDeliveryZoneUpdated(ctx context.Context, zone models.DeliveryZone) error {
	event := &models.DeliveryZoneUpdatedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeDeliveryZoneUpdated),
		SellerID:  zone.SellerID,
		Zone:      zone,
	}
	key := fmt.Sprintf("seller-%d", zone.SellerID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPricingRuleUpdated publishes PricingRuleUpdated event
func (ep *EventPublisher) PublishPricingRuleUpdated(ctx context.Context, rule models.PricingRule) error {
	event := &models.PricingRuleUpdatedEvent{
		BaseEvent:  NewBaseEvent(models.EventTypePricingRuleUpdated),
		ProductID:  rule.ProductID,
		Rule:       rule,
		FinalPrice: rule.FinalPrice,
	}
	key := fmt.Sprintf("product-%d", rule.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBatchPricingApplied publishes BatchPricingApplied event
func (ep *EventPublisher) PublishBatchPricingApplied(ctx context.Context, event *models.BatchPricingAppliedEvent) error {
	if event.EventID == "" {
		event.BaseEvent = NewBaseEvent(models.EventTypeBatchPricingApplied)
	}
	return ep.producer.PublishEvent(ctx, "batch-"+event.EventID, event)
}

// EventHandler handles incoming catalog events
type EventHandler struct {
	onProductUpdated func(context.Context, *models.ProductUpdatedEvent) error
	onProductDeleted func(context.Context, *models.ProductUpdatedEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnProductUpdated registers a handler for ProductUpdated events
func (eh *EventHandler) OnProductUpdated(handler func(context.Context, *models.ProductUpdatedEvent) error) {
	eh.onProductUpdated = handler
}

// OnProductDeleted registers a handler for ProductDeleted events.
// Deleted events carry the same payload as updates.
func (eh *EventHandler) OnProductDeleted(handler func(context.Context, *models.ProductUpdatedEvent) error) {
	eh.onProductDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID),
	)

	var handler func(context.Context, *models.ProductUpdatedEvent) error
	switch baseEvent.EventType {
	case models.EventTypeProductUpdated:
		handler = eh.onProductUpdated
	case models.EventTypeProductDeleted:
		handler = eh.onProductDeleted
	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
		return nil
	}

	if handler == nil {
		return nil
	}

	var event models.ProductUpdatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal %s event: %w", baseEvent.EventType, err)
	}
	return handler(ctx, &event)
}
