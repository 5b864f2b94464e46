package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wellbeing-waitlist/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeConn struct {
	token        mqtt.Token
	published    []published
	disconnected bool
}

func (c *fakeConn) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func (c *fakeConn) Disconnect(uint) { c.disconnected = true }

func TestMQTTPublisher_Publish(t *testing.T) {
	conn := &fakeConn{token: completedToken(nil)}
	p := newMQTTPublisher(conn, "waitlist/cured", 1, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), sampleNotification()))
	require.Len(t, conn.published, 1)
	assert.Equal(t, "waitlist/cured", conn.published[0].topic)
	assert.Equal(t, byte(1), conn.published[0].qos)

	var got models.CureNotification
	require.NoError(t, json.Unmarshal(conn.published[0].payload, &got))
	assert.Equal(t, int64(42), got.PatientID)
	assert.Equal(t, "Jane Doe", got.Name)

	require.NoError(t, p.Close())
	assert.True(t, conn.disconnected)
}

func TestMQTTPublisher_TokenError(t *testing.T) {
	conn := &fakeConn{token: completedToken(errors.New("not connected"))}
	p := newMQTTPublisher(conn, "waitlist/cured", 0, zap.NewNop())

	err := p.Publish(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestMQTTPublisher_ContextCancelled(t *testing.T) {
	conn := &fakeConn{token: &fakeToken{done: make(chan struct{})}}
	p := newMQTTPublisher(conn, "waitlist/cured", 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, sampleNotification())
	assert.ErrorIs(t, err, context.Canceled)
}
