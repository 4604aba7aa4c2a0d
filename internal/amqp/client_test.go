package amqp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"paytrack/internal/core"
	"paytrack/internal/log"
	"paytrack/internal/middleware/trace"
	"paytrack/internal/services"
)

type fakeChannel struct {
	err       error
	published []amqp091.Publishing
	keys      []string
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func newTestClient(ch *fakeChannel) *Client {
	return &Client{
		channel:      ch,
		exchangeName: "paytrack",
		queueName:    "ledger_changes",
		logger:       log.Discard(),
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection error", errors.New("connection refused"), true},
		{"EOF error", errors.New("unexpected EOF"), true},
		{"broken pipe error", errors.New("broken pipe"), true},
		{"closed network connection error", errors.New("use of closed network connection"), true},
		{"amqp closed", amqp091.ErrClosed, true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := newTestClient(&fakeChannel{})

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed initially")
		}
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("Circuit breaker should be open after max failures")
		}
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)

		if client.isCircuitOpen() {
			t.Error("Circuit should transition to half-open after timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("State should be StateHalfOpen after timeout")
		}
	})

	t.Run("failure in half-open reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		atomic.StoreInt32(&client.state, StateHalfOpen)
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("State should be StateOpen after a half-open failure")
		}
	})

	t.Run("record success resets state", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed after success")
		}
		if atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("Failure count should be reset to 0 after success")
		}
	})
}

func TestPublishLedgerChanged(t *testing.T) {
	ch := &fakeChannel{}
	client := newTestClient(ch)
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	totals := core.Totals{TotalIncome: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100)}

	if err := client.PublishLedgerChanged(context.Background(), NewLedgerChangedMessage("add_expense", "2026-01", totals, at)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(ch.published) != 1 || ch.keys[0] != "paytrack/ledger_changes" {
		t.Fatalf("unexpected publishes: %v", ch.keys)
	}
	p := ch.published[0]
	if p.ContentType != "application/json" || p.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected publishing headers: %+v", p)
	}
	if p.CorrelationId != "" {
		t.Fatalf("correlation id without a request = %q", p.CorrelationId)
	}

	msg, err := LedgerChangedMessageFromJSON(p.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Operation != "add_expense" || msg.Month != "2026-01" || !msg.Timestamp.Equal(at) {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !msg.Totals.TotalIncome.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected totals: %+v", msg.Totals)
	}
}

func TestPublishCarriesRequestID(t *testing.T) {
	ch := &fakeChannel{}
	client := newTestClient(ch)
	ctx := trace.WithRequestID(context.Background(), "req_0123456789abcdef")

	if err := client.PublishLedgerChanged(ctx, &LedgerChangedMessage{Operation: "set_income", Month: "2026-01"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := ch.published[0].CorrelationId; got != "req_0123456789abcdef" {
		t.Fatalf("CorrelationId = %q", got)
	}
}

func TestPublishFailsWhenCircuitOpen(t *testing.T) {
	ch := &fakeChannel{}
	client := newTestClient(ch)
	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()

	err := client.PublishLedgerChanged(context.Background(), &LedgerChangedMessage{})
	if err == nil {
		t.Fatal("publish should fail when circuit is open")
	}
	if len(ch.published) != 0 {
		t.Fatal("nothing should reach the channel while open")
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("connection reset")}
	client := newTestClient(ch)

	var n services.Notifier = client
	for i := 0; i < maxFailures; i++ {
		n.Notify(context.Background(), services.Change{Operation: "clear_paid", Month: "2026-01"})
	}
	if !client.isCircuitOpen() {
		t.Fatal("repeated publish failures should open the circuit")
	}
}
