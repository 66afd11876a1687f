package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return f.err
}

func TestPublishMessage(t *testing.T) {
	type event struct {
		VisitID string `json:"visitId"`
	}

	tests := []struct {
		name      string
		message   any
		chErr     error
		wantErr   bool
		wantCalls int
	}{
		{name: "success", message: event{VisitID: "VIS-1A2B3C4D"}, wantCalls: 1},
		{name: "marshal error", message: struct{ C chan int }{C: make(chan int)}, wantErr: true},
		{name: "broker error", message: event{}, chErr: errors.New("channel closed"), wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{err: tt.chErr}
			err := PublishMessage(ch, Exchange, RoutingVisitCreated, tt.message)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
			} else {
				require.NoError(t, err)
			}
			require.Len(t, ch.calls, tt.wantCalls)
			if tt.wantCalls == 0 || tt.wantErr {
				return
			}

			call := ch.calls[0]
			assert.Equal(t, Exchange, call.exchange)
			assert.Equal(t, RoutingVisitCreated, call.key)
			assert.Equal(t, "application/json", call.msg.ContentType)
			assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)

			var got event
			require.NoError(t, json.Unmarshal(call.msg.Body, &got))
			assert.Equal(t, "VIS-1A2B3C4D", got.VisitID)
		})
	}
}

func TestPublisher_ConcurrentPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish(context.Background(), RoutingVisitReminder, map[string]int{"n": 1}))
		}()
	}
	wg.Wait()

	assert.Len(t, ch.calls, 20)
}

func TestPublisher_CanceledContext(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, RoutingVisitCreated, "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ch.calls)
}

func TestVisitQueues(t *testing.T) {
	queues := VisitQueues()
	require.NotEmpty(t, queues)

	seen := map[string]bool{}
	keys := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
		keys[q.RoutingKey] = true
	}
	assert.True(t, keys[RoutingVisitCreated])
	assert.True(t, keys[RoutingVisitReminder])
	assert.True(t, keys[RoutingVisitStatus])
}
