package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nordiccms/content-expiry/internal/logger"
)

const (
	blockDuration    = 5 * time.Second
	claimIdleTimeout = 30 * time.Second
	batchSize        = 10
)

// Consumer reads version events from Redis Streams.
type Consumer struct {
	client     *redis.Client
	consumerID string
	handler    EventHandler
	log        logger.Logger
	shutdownCh chan struct{}
}

// NewConsumer creates a new event consumer.
// Returns nil if client is nil.
func NewConsumer(client *redis.Client, consumerID string, handler EventHandler, log logger.Logger) *Consumer {
	if client == nil {
		return nil
	}
	if consumerID == "" {
		consumerID = generateConsumerID()
	}
	return &Consumer{
		client:     client,
		consumerID: consumerID,
		handler:    handler,
		log:        log,
		shutdownCh: make(chan struct{}),
	}
}

// generateConsumerID creates a unique consumer identifier.
func generateConsumerID() string {
	const uuidPrefixLength = 8
	return fmt.Sprintf("content-expiry-%s", uuid.New().String()[:uuidPrefixLength])
}

// Start begins consuming events from the stream.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	c.log.Info("Starting event consumer",
		logger.String("consumer_id", c.consumerID),
		logger.String("group", ConsumerGroup),
	)

	go c.consumeLoop(ctx)
	go c.claimAbandonedLoop(ctx)

	return nil
}

// Stop gracefully shuts down the consumer.
func (c *Consumer) Stop() {
	close(c.shutdownCh)
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdownCh:
			return
		default:
			c.readAndProcess(ctx)
		}
	}
}

func (c *Consumer) readAndProcess(ctx context.Context) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: c.consumerID,
		Streams:  []string{StreamName, ">"},
		Count:    batchSize,
		Block:    blockDuration,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return
		}
		c.log.Error("Failed to read from stream", logger.Error(err))
		time.Sleep(time.Second)
		return
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.processMessage(ctx, msg)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage) {
	eventData, ok := msg.Values["event"].(string)
	if !ok {
		c.log.Error("Invalid message format", logger.String("stream_id", msg.ID))
		c.ackMessage(ctx, msg.ID)
		return
	}

	var event VersionEvent
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		c.log.Error("Failed to unmarshal event",
			logger.String("stream_id", msg.ID),
			logger.Error(err),
		)
		c.ackMessage(ctx, msg.ID)
		return
	}

	var err error
	switch event.EventType {
	case VersionDraftCreated:
		err = c.handler.HandleDraftCreated(ctx, event)
	case VersionPublished, VersionUnpublished, VersionArchived:
		// Lifecycle transitions after creation leave the expiry record alone.
	default:
		c.log.Warn("Unknown event type",
			logger.String("event_type", string(event.EventType)),
		)
	}

	if err != nil {
		c.log.Error("Failed to handle event",
			logger.String("event_type", string(event.EventType)),
			logger.Int64("version_id", event.VersionID),
			logger.Error(err),
		)
		return // Don't ACK - will be retried
	}

	c.ackMessage(ctx, msg.ID)

	c.log.Info("Processed event",
		logger.String("event_type", string(event.EventType)),
		logger.Int64("version_id", event.VersionID),
		logger.String("stream_id", msg.ID),
	)
}

func (c *Consumer) ackMessage(ctx context.Context, streamID string) {
	if err := c.client.XAck(ctx, StreamName, ConsumerGroup, streamID).Err(); err != nil {
		c.log.Error("Failed to ACK message",
			logger.String("stream_id", streamID),
			logger.Error(err),
		)
	}
}

func (c *Consumer) claimAbandonedLoop(ctx context.Context) {
	ticker := time.NewTicker(claimIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdownCh:
			return
		case <-ticker.C:
			c.claimAbandonedMessages(ctx)
		}
	}
}

func (c *Consumer) claimAbandonedMessages(ctx context.Context) {
	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamName,
		Group:    ConsumerGroup,
		Consumer: c.consumerID,
		MinIdle:  claimIdleTimeout,
		Count:    batchSize,
	}).Result()

	if err != nil {
		c.log.Error("Failed to auto-claim messages", logger.Error(err))
		return
	}

	for _, msg := range messages {
		c.log.Info("Claimed abandoned message", logger.String("stream_id", msg.ID))
		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) ensureConsumerGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, StreamName, ConsumerGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return err
	}
	return nil
}

func isGroupExistsError(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
