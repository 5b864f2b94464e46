package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleNotification() models.CureNotification {
	return models.CureNotification{
		NotificationID: "3f1c9c7e-2d4b-4f7a-9a4e-1b8f0c6d2e11",
		PatientID:      42,
		Name:           "Jane Doe",
		Timestamp:      time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC),
	}
}

func setupStream(t *testing.T) (*redis.Client, *StreamPublisher) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, NewStreamPublisher(client, "", 0)
}

func TestStreamPublisher_Publish(t *testing.T) {
	client, p := setupStream(t)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, sampleNotification()))

	msgs, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	values := msgs[0].Values
	assert.Equal(t, "42", values["patient_id"])
	assert.Equal(t, "1772359230", values["timestamp"])
	assert.JSONEq(t,
		`{"notificationId":"3f1c9c7e-2d4b-4f7a-9a4e-1b8f0c6d2e11","patientId":42,"name":"Jane Doe","timestamp":"2026-03-01T10:00:30Z"}`,
		values["data"].(string))
}

func TestStreamPublisher_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	p := NewStreamPublisher(client, "cures", 0)
	mr.Close()

	err := p.Publish(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cures")
}

type failingPublisher struct {
	err    error
	calls  int
	closed bool
}

func (f *failingPublisher) Publish(context.Context, models.CureNotification) error {
	f.calls++
	return f.err
}

func (f *failingPublisher) Close() error {
	f.closed = true
	return nil
}

func TestMulti_PublishesToAllSinks(t *testing.T) {
	client, stream := setupStream(t)
	broken := &failingPublisher{err: errors.New("broker unavailable")}
	healthy := &failingPublisher{}

	m := Multi{NewLogPublisher(zap.NewNop()), broken, stream, healthy}
	err := m.Publish(context.Background(), sampleNotification())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, healthy.calls)

	n, err := client.XLen(context.Background(), DefaultStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, m.Close())
	assert.True(t, broken.closed)
	assert.True(t, healthy.closed)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, Multi(nil).Publish(context.Background(), sampleNotification()))
	assert.NoError(t, Multi(nil).Close())
}
