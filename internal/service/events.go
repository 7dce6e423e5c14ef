package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/konverge-api/internal/observability"
)

const eventBufferSize = 16

// Event types emitted after a successful commit.
const (
	EventMatchRecommended     = "match.recommended"
	EventMatchDecision        = "match.decision"
	EventMatchApplied         = "match.applied"
	EventCollaborationStarted = "collaboration.started"
	EventRatingCompleted      = "rating.completed"
)

// Event informs connected clients about match lifecycle changes.
type Event struct {
	Type       string                 `json:"type"`
	ProjectID  uint                   `json:"project_id,omitempty"`
	MatchID    uint                   `json:"match_id,omitempty"`
	Recipients []uint                 `json:"recipients"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Broadcaster fans events out to local subscribers and, when configured, to
// other API nodes through redis pub/sub and NATS.
type Broadcaster interface {
	Publish(ctx context.Context, events ...Event)
	Subscribe(userID uint) (<-chan Event, func())
	Start(ctx context.Context)
}

type broadcaster struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *eventBroker
	nodeID       string
}

type envelope struct {
	Source string    `json:"source"`
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

type eventBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan Event]struct{}
}

// NewBroadcaster constructs an event broadcaster. Both transports are optional.
func NewBroadcaster(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) Broadcaster {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":match-events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".match-events"
	}

	return &broadcaster{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_broadcaster").Logger(),
		broker: &eventBroker{
			subscribers: make(map[uint]map[chan Event]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (b *broadcaster) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

// Publish never fails the caller; transport errors are logged.
func (b *broadcaster) Publish(ctx context.Context, events ...Event) {
	for _, event := range events {
		if event.OccurredAt.IsZero() {
			event.OccurredAt = time.Now().UTC()
		}

		b.deliver(event)
		if err := b.forward(ctx, event); err != nil {
			b.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to forward event to broker")
		}
	}
}

func (b *broadcaster) Subscribe(userID uint) (<-chan Event, func()) {
	channel := make(chan Event, eventBufferSize)

	b.broker.subscribe(userID, channel)
	observability.EventStreamClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.broker.unsubscribe(userID, channel)
			observability.EventStreamClients().Dec()
		})
	}

	return channel, cleanup
}

func (b *broadcaster) deliver(event Event) {
	observability.EventsPublished().WithLabelValues(event.Type).Inc()
	for _, userID := range uniqueRecipients(event.Recipients) {
		b.broker.broadcast(userID, event)
	}
}

func (b *broadcaster) forward(ctx context.Context, event Event) error {
	if (b.redis == nil || b.redisChannel == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(envelope{
		Source: b.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (b *broadcaster) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			b.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		b.handleEnvelope([]byte(msg.Payload))
	}
}

// consumeNATS uses a plain subscription: every node must see every event to
// reach its own stream clients.
func (b *broadcaster) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handleEnvelope(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats event subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain event nats subscription")
		}
	}()
}

func (b *broadcaster) handleEnvelope(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}

	if env.Source == b.nodeID || env.Event.Type == "" {
		return
	}

	b.deliver(env.Event)
}

func uniqueRecipients(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func (b *eventBroker) subscribe(userID uint, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[userID]; !exists {
		b.subscribers[userID] = make(map[chan Event]struct{})
	}
	b.subscribers[userID][ch] = struct{}{}
}

func (b *eventBroker) unsubscribe(userID uint, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[userID]; ok {
		if _, present := subscribers[ch]; !present {
			return
		}
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

// broadcast drops the event for subscribers whose buffer is full.
func (b *eventBroker) broadcast(userID uint, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
