package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"wellbeing-waitlist/internal/models"

	"github.com/go-redis/redis/v8"
)

// DefaultStream Redis stream receiving cure notifications
const DefaultStream = "waitlist:cure-notifications"

// StreamPublisher appends notifications to a Redis stream (XADD).
// Entry fields: data (JSON), patient_id, timestamp (unix seconds).
type StreamPublisher struct {
	client *redis.Client
	stream string
	// maxLen approximate stream cap, 0 = unbounded
	maxLen int64
}

func NewStreamPublisher(client *redis.Client, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *StreamPublisher) Publish(ctx context.Context, n models.CureNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"patient_id": strconv.FormatInt(n.PatientID, 10),
			"timestamp":  strconv.FormatInt(n.Timestamp.Unix(), 10),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	return nil
}

// Close is a no-op; the Redis client is shared and closed by its owner
func (p *StreamPublisher) Close() error { return nil }
