package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dontdude/regexbench/internal/domain"
)

// Default stream, group and channel names.
const (
	ResultStream    = "regexbench:results"
	ResultGroup     = "regexbench:consumers"
	ProgressChannel = "regexbench:progress"
)

// RedisPublisher implements domain.ResultPublisher using a Redis stream for
// results and pub/sub for progress.
type RedisPublisher struct {
	client  *redis.Client
	stream  string
	group   string
	channel string
}

// Ensure RedisPublisher satisfies the interface
var _ domain.ResultPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to addr and pings it so that a missing broker
// is reported before any benchmark runs.
func NewRedisPublisher(ctx context.Context, addr string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Fail-fast ping check
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisPublisher{
		client:  rdb,
		stream:  ResultStream,
		group:   ResultGroup,
		channel: ProgressChannel,
	}, nil
}

// Close releases the connection pool.
func (r *RedisPublisher) Close() error {
	return r.client.Close()
}

// PublishResult appends a record to the result stream using XADD.
func (r *RedisPublisher) PublishResult(ctx context.Context, record domain.ResultRecord) error {
	values, err := encodeRecord(record)
	if err != nil {
		return err
	}
	// "*" lets Redis generate a timestamp-based ID.
	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Progress broadcasts a progress event. Delivery is best effort; failures
// are logged.
func (r *RedisPublisher) Progress(ev domain.ProgressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal progress", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		slog.Warn("Failed to publish progress", "runID", ev.RunID, "error", err)
	}
}

// SubscribeResults returns a channel of records read with XREADGROUP.
// Records must be acknowledged with Acknowledge.
func (r *RedisPublisher) SubscribeResults(ctx context.Context) (<-chan domain.ResultRecord, error) {
	// 1. Ensure the consumer group exists. MkStream creates an empty
	// stream if needed.
	err := r.client.XGroupCreateMkStream(ctx, r.stream, r.group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	// 2. Spawn a background listener
	outCh := make(chan domain.ResultRecord)
	consumerID := consumerName()

	go func() {
		defer close(outCh)

		for ctx.Err() == nil {
			// Block for 2s at most so that cancellation is noticed.
			streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    r.group,
				Consumer: consumerID,
				Streams:  []string{r.stream, ">"},
				Count:    16,
				Block:    2 * time.Second,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				slog.Error("Redis read error", "error", err)
				time.Sleep(1 * time.Second) // Backoff
				continue
			}
			for _, stream := range streams {
				for _, msg := range stream.Messages {
					record, err := decodeMessage(msg)
					if err != nil {
						slog.Error("Dropping malformed result", "msgID", msg.ID, "error", err)
						r.client.XAck(ctx, r.stream, r.group, msg.ID)
						continue
					}
					select {
					case outCh <- record:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return outCh, nil
}

// Acknowledge confirms processing using XACK.
func (r *RedisPublisher) Acknowledge(ctx context.Context, rawID string) error {
	return r.client.XAck(ctx, r.stream, r.group, rawID).Err()
}

// SubscribeProgress streams progress events from every running harness.
func (r *RedisPublisher) SubscribeProgress(ctx context.Context) (<-chan domain.ProgressEvent, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)

	// Wait for confirmation that we are subscribed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to progress: %w", err)
	}

	outCh := make(chan domain.ProgressEvent)
	go func() {
		defer close(outCh)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev domain.ProgressEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Error("Failed to unmarshal progress", "error", err)
					continue
				}
				select {
				case outCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return outCh, nil
}

func encodeRecord(record domain.ResultRecord) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return map[string]any{
		"run_id": record.RunID,
		"result": data,
	}, nil
}

func decodeMessage(msg redis.XMessage) (domain.ResultRecord, error) {
	var record domain.ResultRecord
	val, ok := msg.Values["result"].(string)
	if !ok {
		return record, fmt.Errorf("message %s has no result field", msg.ID)
	}
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return record, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	// Capture the stream ID so that the record can be acknowledged.
	record.RawID = msg.ID
	return record, nil
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// consumerName is unique per process.
func consumerName() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "consumer"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
