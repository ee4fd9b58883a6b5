package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// publishedWishlistMessage publishes a wishlist update under ctx and returns
// the message handed to the writer.
func publishedWishlistMessage(t *testing.T, ctx context.Context) kafka.Message {
	t.Helper()
	w := &fakeWriter{}
	p := newProducer(w, nil, nil)
	event, err := NewEvent("wishlist.updated", "sess-9", "wishlist", "fanrc", wishlistPayload{SessionID: "sess-9", Items: 2})
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, Topic("wishlist", "updated"), event))
	require.Len(t, w.msgs, 1)
	return w.msgs[0]
}

func TestHeaderCarrier_WishlistEventRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	member, err := baggage.NewMember("wishlist.session", "sess-9")
	require.NoError(t, err)
	bag, err := baggage.New(member)
	require.NoError(t, err)
	ctx = baggage.ContextWithBaggage(ctx, bag)

	msg := publishedWishlistMessage(t, ctx)
	assert.Equal(t, "fanrc.wishlist.updated", msg.Topic)

	consumerCtx := otel.GetTextMapPropagator().Extract(context.Background(), NewHeaderCarrier(&msg.Headers))
	sc := trace.SpanContextFromContext(consumerCtx)
	require.True(t, sc.IsValid())
	assert.True(t, sc.IsRemote())
	assert.Equal(t, traceID, sc.TraceID())
	assert.Equal(t, spanID, sc.SpanID())
	assert.Equal(t, "sess-9", baggage.FromContext(consumerCtx).Member("wishlist.session").Value())
}

func TestHeaderCarrier_NoSpanLeavesNoTraceHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	msg := publishedWishlistMessage(t, context.Background())

	c := NewHeaderCarrier(&msg.Headers)
	assert.Empty(t, c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"event_type", "source"}, c.Keys())
}

func TestHeaderCarrier_SetOverwritesInPlace(t *testing.T) {
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte("wishlist.updated")},
		{Key: "traceparent", Value: []byte("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")},
	}
	c := NewHeaderCarrier(&headers)

	c.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	c.Set("source", "fanrc")

	require.Len(t, headers, 3)
	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", c.Get("traceparent"))
	assert.Equal(t, []string{"event_type", "traceparent", "source"}, c.Keys())
}

func TestHeaderCarrier_EmptyHeaders(t *testing.T) {
	var headers []kafka.Header
	c := NewHeaderCarrier(&headers)

	assert.Empty(t, c.Keys())
	assert.Empty(t, c.Get("traceparent"))

	c.Set("event_type", "wishlist.cleared")
	require.Len(t, headers, 1)
	assert.Equal(t, "wishlist.cleared", c.Get("event_type"))
}
