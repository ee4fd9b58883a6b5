package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helloivanco/fanrc/internal/domain"
	pkgkafka "github.com/helloivanco/fanrc/pkg/kafka"
	"github.com/helloivanco/fanrc/pkg/logger"
)

// Kafka topics for wishlist domain events.
var (
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
	TopicWishlistCleared = pkgkafka.Topic("wishlist", "cleared")
)

// AggregateTypeWishlist is the aggregate type of wishlist events.
const AggregateTypeWishlist = "wishlist"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "fanrc-storefront"

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID string             `json:"session_id"`
	Items     []WishlistItemData `json:"items"`
	ItemCount int                `json:"item_count"`
}

// WishlistItemData is the item payload within wishlist events.
type WishlistItemData struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// WishlistClearedData is the payload for a wishlist.cleared event.
type WishlistClearedData struct {
	SessionID string `json:"session_id"`
}

// Publisher is the subset of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. A nil publisher disables
// publishing; every call then succeeds without doing anything.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, session string, w domain.Wishlist) error {
	if p.kafka == nil {
		return nil
	}

	items := make([]WishlistItemData, len(w))
	for i, e := range w {
		items[i] = WishlistItemData{
			ProductID: e.ProductID,
			VariantID: e.VariantID,
			Quantity:  e.Quantity,
		}
	}

	data := WishlistUpdatedData{
		SessionID: session,
		Items:     items,
		ItemCount: w.ItemCount(),
	}

	if err := p.publish(ctx, TopicWishlistUpdated, session, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", session),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishWishlistCleared publishes a wishlist.cleared event.
func (p *Producer) PublishWishlistCleared(ctx context.Context, session string) error {
	if p.kafka == nil {
		return nil
	}

	if err := p.publish(ctx, TopicWishlistCleared, session, WishlistClearedData{SessionID: session}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published wishlist.cleared event",
		slog.String("session_id", session),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, session string, data any) error {
	event, err := pkgkafka.NewEvent(topic, session, AggregateTypeWishlist, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
