package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type recordingAcknowledger struct {
	mu       sync.Mutex
	acks     []uint64
	nacks    []uint64
	requeued []bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks = append(a.acks, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks = append(a.nacks, tag)
	a.requeued = append(a.requeued, requeue)
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func delivery(ack amqp091.Acknowledger, tag uint64, msg *ExportMessage) amqp091.Delivery {
	body, _ := msg.ToJSON()
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestConsumeLoopAcksHandledJobs(t *testing.T) {
	ack := &recordingAcknowledger{}
	msgs := make(chan amqp091.Delivery, 2)
	msgs <- delivery(ack, 1, NewExportMessage(7, 2025, 3))
	msgs <- amqp091.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("not json")}

	var handled []int64
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let both deliveries drain, then stop the loop.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := consumeLoop(ctx, msgs, func(_ context.Context, m *ExportMessage) error {
		handled = append(handled, m.UserID)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(handled) != 1 || handled[0] != 7 {
		t.Fatalf("handled = %v", handled)
	}
	ack.mu.Lock()
	defer ack.mu.Unlock()
	if len(ack.acks) != 1 || ack.acks[0] != 1 {
		t.Fatalf("acks = %v", ack.acks)
	}
	// The undecodable delivery is dropped without requeue.
	if len(ack.nacks) != 1 || ack.nacks[0] != 2 || ack.requeued[0] {
		t.Fatalf("nacks = %v requeued = %v", ack.nacks, ack.requeued)
	}
}

func TestConsumeLoopRequeuesHandlerFailures(t *testing.T) {
	ack := &recordingAcknowledger{}
	msgs := make(chan amqp091.Delivery, 1)
	msgs <- delivery(ack, 5, NewExportMessage(7, 2025, 3))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := consumeLoop(ctx, msgs, func(context.Context, *ExportMessage) error {
		return errors.New("sheets unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	if len(ack.nacks) != 1 || ack.nacks[0] != 5 || !ack.requeued[0] {
		t.Fatalf("nacks = %v requeued = %v", ack.nacks, ack.requeued)
	}
}

// Cancelling mid-job must not abandon the delivery: the handler finishes and
// the ack lands before the loop returns.
func TestConsumeLoopSettlesInFlightJobOnCancel(t *testing.T) {
	ack := &recordingAcknowledger{}
	msgs := make(chan amqp091.Delivery, 1)
	msgs <- delivery(ack, 9, NewExportMessage(7, 2025, 3))

	ctx, cancel := context.WithCancel(context.Background())
	err := consumeLoop(ctx, msgs, func(context.Context, *ExportMessage) error {
		cancel() // shutdown arrives while the job is running
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	if len(ack.acks) != 1 || ack.acks[0] != 9 {
		t.Fatalf("in-flight job must be acked before the loop returns, acks = %v", ack.acks)
	}
}

func TestConsumeLoopStopsWhenChannelCloses(t *testing.T) {
	msgs := make(chan amqp091.Delivery)
	close(msgs)

	err := consumeLoop(context.Background(), msgs, func(context.Context, *ExportMessage) error {
		t.Fatal("handler must not run")
		return nil
	})
	if err == nil {
		t.Fatal("expected error on closed channel")
	}
}
