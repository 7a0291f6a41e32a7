package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dontdude/regexbench/internal/domain"
)

// recoveryConsumer claims records abandoned by consumers that died before
// acknowledging them.
const recoveryConsumer = "recovery-agent"

// StartRecoveryRoutine polls the pending entries list for records idle
// longer than maxAge, hands them to handle and acknowledges them. It
// returns when ctx is cancelled.
func (r *RedisPublisher) StartRecoveryRoutine(ctx context.Context, interval, maxAge time.Duration, handle func(domain.ResultRecord)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Starting Redis recovery routine", "interval", interval, "maxAge", maxAge)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reclaim(ctx, maxAge, handle)
		}
	}
}

func (r *RedisPublisher) reclaim(ctx context.Context, maxAge time.Duration, handle func(domain.ResultRecord)) {
	start := "-" // Start from beginning of stream
	for {
		// XAUTOCLAIM in batches of 10
		messages, next, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   r.stream,
			Group:    r.group,
			MinIdle:  maxAge,
			Start:    start,
			Count:    10,
			Consumer: recoveryConsumer,
		}).Result()
		if err != nil {
			slog.Error("Recovery routine failed", "error", err)
			return
		}
		if len(messages) > 0 {
			slog.Info("Recovered stale results", "count", len(messages))
		}
		for _, msg := range messages {
			record, err := decodeMessage(msg)
			if err != nil {
				slog.Warn("Dropping malformed stale result", "msgID", msg.ID, "error", err)
			} else {
				handle(record)
			}
			if err := r.client.XAck(ctx, r.stream, r.group, msg.ID).Err(); err != nil {
				slog.Error("Failed to acknowledge recovered result", "msgID", msg.ID, "error", err)
			}
		}
		start = next
		if len(messages) == 0 || start == "0-0" {
			return
		}
	}
}
