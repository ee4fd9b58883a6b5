package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/service"
	"github.com/helloivanco/fanrc/pkg/httputil"
	"github.com/helloivanco/fanrc/pkg/middleware"
)

// streamRetry is the reconnect delay suggested to EventSource clients.
const streamRetry = 2 * time.Second

// StreamHandler pushes the resolved wishlist to the client as server-sent
// events, one "wishlist" event per change.
type StreamHandler struct {
	watcher  *service.WishlistWatcher
	wishlist *WishlistHandler
	shutdown context.Context
	logger   *slog.Logger
}

// NewStreamHandler creates a new wishlist stream handler. Open streams end
// when shutdown is canceled; shutdown may be nil.
func NewStreamHandler(watcher *service.WishlistWatcher, wishlist *WishlistHandler, shutdown context.Context, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{watcher: watcher, wishlist: wishlist, shutdown: shutdown, logger: logger}
}

// Stream handles GET /api/v1/wishlist/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "STREAMING_UNSUPPORTED", Message: "streaming is not supported"},
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", streamRetry.Milliseconds())
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	if h.shutdown != nil {
		stop := context.AfterFunc(h.shutdown, cancel)
		defer stop()
	}

	sessionID := middleware.SessionIDFromContext(ctx)
	seq := 0

	err := h.watcher.Watch(ctx, sessionID, func(entries domain.Wishlist) error {
		data, err := json.Marshal(h.wishlist.view(entries))
		if err != nil {
			return fmt.Errorf("marshal wishlist event: %w", err)
		}
		seq++
		if _, err := fmt.Fprintf(w, "id: %d\nevent: wishlist\ndata: %s\n\n", seq, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		h.logger.DebugContext(ctx, "wishlist stream closed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
