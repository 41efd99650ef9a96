package worker

import (
	"context"
	"fmt"
	"strings"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// CatalogInvalidator drops cached ingredient candidates by product name
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context, names ...string) error
}

// CatalogWorker keeps the ingredient candidate cache in step with catalog changes
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        CatalogInvalidator
	logger       *zap.Logger
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, cache CatalogInvalidator) *CatalogWorker {
	w := &CatalogWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnProductUpdated(w.handleProductChange)
	eventHandler.OnProductDeleted(w.handleProductChange)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker")
	return w.consumer.Close()
}

func (w *CatalogWorker) handleProductChange(ctx context.Context, event *models.ProductUpdatedEvent) error {
	util.CatalogEventsConsumed.WithLabelValues(event.EventType).Inc()

	names := affectedNames(event)
	if len(names) == 0 {
		return nil
	}

	if err := w.cache.InvalidateCatalog(ctx, names...); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache for product %d: %w", event.ProductID, err)
	}

	w.logger.Debug("Invalidated catalog cache",
		zap.Int64("product_id", event.ProductID),
		zap.Strings("names", names),
	)
	return nil
}

// affectedNames lists the trimmed cache keys touched by a product change
func affectedNames(event *models.ProductUpdatedEvent) []string {
	names := make([]string, 0, 2)
	for _, n := range []string{event.Name, event.PreviousName} {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if len(names) == 1 && names[0] == n {
			continue
		}
		names = append(names, n)
	}
	return names
}
