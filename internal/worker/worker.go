package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/notifier"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifierWorker consumes order/payment events and fans them out to the
// Telegram channel. Consumer-side idempotency goes through the
// processed_events table so a redelivered message is posted once.
type NotifierWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	store    *store.Store
	telegram *notifier.Telegram
	logger   *zap.Logger
}

// NewNotifierWorker creates a new notification fan-out worker
func NewNotifierWorker(consumer *broker.Consumer, store *store.Store, telegram *notifier.Telegram) *NotifierWorker {
	w := &NotifierWorker{
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		store:    store,
		telegram: telegram,
		logger:   util.GetLogger(),
	}

	w.handler.OnOrderCreated(func(ctx context.Context, event *models.OrderCreatedEvent) error {
		return w.deliver(ctx, event.BaseEvent, notifier.FormatOrderCreated(event))
	})
	w.handler.OnPaymentCompleted(func(ctx context.Context, event *models.PaymentCompletedEvent) error {
		return w.deliver(ctx, event.BaseEvent, notifier.FormatPaymentCompleted(event))
	})
	w.handler.OnPaymentFailed(func(ctx context.Context, event *models.PaymentFailedEvent) error {
		return w.deliver(ctx, event.BaseEvent, notifier.FormatPaymentFailed(event))
	})
	w.handler.OnMarketingDigest(func(ctx context.Context, event *models.MarketingDigestEvent) error {
		return w.deliver(ctx, event.BaseEvent, notifier.FormatMarketingDigest(event))
	})

	return w
}

// deliver posts one event to the channel exactly once. A Telegram failure
// is logged, marked processed and swallowed: fan-out is best-effort and
// must never wedge the consumer.
func (w *NotifierWorker) deliver(ctx context.Context, base models.BaseEvent, text string) error {
	processed, err := w.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	if err := w.telegram.Send(ctx, text); err != nil {
		w.logger.Error("Telegram delivery failed",
			zap.String("event_id", base.EventID),
			zap.String("event_type", base.EventType),
			zap.Error(err))
	}

	if err := w.store.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

// Start starts the worker
func (w *NotifierWorker) Start(ctx context.Context) error {
	log.Println("Starting notifier worker...")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *NotifierWorker) Stop() error {
	log.Println("Stopping notifier worker...")
	return w.consumer.Close()
}

// DigestSource provides the products featured in a marketing digest
type DigestSource interface {
	DiscountedProducts(ctx context.Context, limit int) ([]models.Product, error)
}

// MarketingScheduler publishes a catalog digest event on a fixed
// interval. Failures are logged and the next tick tries again; nothing
// here touches the request path.
type MarketingScheduler struct {
	source    DigestSource
	publisher *broker.EventPublisher
	interval  time.Duration
	size      int
	logger    *zap.Logger
	stop      chan struct{}
}

// NewMarketingScheduler creates a new digest scheduler
func NewMarketingScheduler(source DigestSource, publisher *broker.EventPublisher, interval time.Duration, size int) *MarketingScheduler {
	return &MarketingScheduler{
		source:    source,
		publisher: publisher,
		interval:  interval,
		size:      size,
		logger:    util.GetLogger(),
		stop:      make(chan struct{}),
	}
}

// Start runs the scheduler until the context is cancelled or Stop is
// called.
func (ms *MarketingScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(ms.interval)
	defer ticker.Stop()

	log.Printf("Marketing scheduler started: interval=%s", ms.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ms.stop:
			return
		case <-ticker.C:
			if err := ms.publishDigest(ctx); err != nil {
				ms.logger.Error("Marketing digest failed", zap.Error(err))
			}
		}
	}
}

// Stop stops the scheduler
func (ms *MarketingScheduler) Stop() {
	close(ms.stop)
}

func (ms *MarketingScheduler) publishDigest(ctx context.Context) error {
	products, err := ms.source.DiscountedProducts(ctx, ms.size)
	if err != nil {
		return fmt.Errorf("failed to load digest products: %w", err)
	}
	if len(products) == 0 {
		ms.logger.Info("No discounted products, skipping digest")
		return nil
	}

	digest := make([]models.DigestProduct, 0, len(products))
	for _, p := range products {
		digest = append(digest, models.DigestProduct{
			Slug:            p.Slug,
			NameUz:          p.NameUz,
			NameRu:          p.NameRu,
			Price:           p.Price,
			DiscountPercent: p.DiscountPercent,
		})
	}

	event := &models.MarketingDigestEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeMarketingDigest,
			Timestamp: time.Now(),
		},
		Products: digest,
	}

	util.MarketingDigestsTotal.Inc()
	return ms.publisher.PublishMarketingDigest(ctx, event)
}
