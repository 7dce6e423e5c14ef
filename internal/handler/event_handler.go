package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/middleware"
	"github.com/noah-isme/konverge-api/internal/service"
)

// EventHandler streams match events to the authenticated user over SSE.
type EventHandler struct {
	broadcaster service.Broadcaster
	logger      zerolog.Logger
	keepAlive   time.Duration
}

// NewEventHandler constructs a handler instance.
func NewEventHandler(broadcaster service.Broadcaster, logger zerolog.Logger, keepAlive time.Duration) *EventHandler {
	return &EventHandler{
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "event_handler").Logger(),
		keepAlive:   keepAlive,
	}
}

// Register binds the event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("/stream", middleware.RequireUser(h.stream))
}

func (h *EventHandler) stream(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))

	events, cleanup := h.broadcaster.Subscribe(userID)

	interval := h.keepAlive
	if interval <= 0 {
		interval = 30 * time.Second
	}

	logger := h.logger.With().Uint("user_id", userID).Logger()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					logger.Debug().Err(err).Msg("failed to write match event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					logger.Debug().Err(err).Msg("failed to write event keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, event service.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
