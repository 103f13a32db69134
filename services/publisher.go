package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-delay-api/config"
	"flight-delay-api/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pingAttempts   = 5
	publishTimeout = 2 * time.Second
)

// PredictionPublisher fans prediction events out over a Redis channel. A
// publisher without a client is valid and drops every event.
type PredictionPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewDisabledPublisher returns a publisher that drops events.
func NewDisabledPublisher(logger *zap.Logger) *PredictionPublisher {
	return &PredictionPublisher{logger: logger}
}

func NewPredictionPublisher(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*PredictionPublisher, error) {
	if !cfg.Enabled() {
		return NewDisabledPublisher(logger), nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return NewDisabledPublisher(logger), fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	var lastErr error
	for i := 0; i < pingAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return &PredictionPublisher{client: client, channel: cfg.Channel, logger: logger}, nil
		}
		logger.Warn("redis ping failed",
			zap.Int("attempt", i+1), zap.Int("of", pingAttempts), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			client.Close()
			return NewDisabledPublisher(logger), ctx.Err()
		case <-time.After(time.Second):
		}
	}

	client.Close()
	return NewDisabledPublisher(logger), fmt.Errorf("redis ping failed after %d attempts: %w", pingAttempts, lastErr)
}

func (p *PredictionPublisher) Available() bool {
	return p != nil && p.client != nil
}

func (p *PredictionPublisher) Channel() string {
	return p.channel
}

func (p *PredictionPublisher) Publish(ctx context.Context, event models.PredictionEvent) error {
	if !p.Available() {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// PublishAsync publishes in the background so a slow Redis never holds up a response.
func (p *PredictionPublisher) PublishAsync(event models.PredictionEvent) {
	if !p.Available() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			PublishFailures.Inc()
			p.logger.Warn("publish prediction failed",
				zap.Int("airport_id", event.AirportID), zap.Error(err))
			return
		}
		PredictionsPublished.Inc()
	}()
}

// Subscribe returns the channel's messages and a func that ends the subscription.
func (p *PredictionPublisher) Subscribe(ctx context.Context) (<-chan *redis.Message, func() error) {
	if !p.Available() {
		return nil, func() error { return nil }
	}
	pubsub := p.client.Subscribe(ctx, p.channel)
	return pubsub.Channel(), pubsub.Close
}

func (p *PredictionPublisher) Close() error {
	if !p.Available() {
		return nil
	}
	return p.client.Close()
}
