package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eliyaaki/auth-service/internal/logger"
)

// Fake mailer recording what was sent
type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func Test_Dispatcher(t *testing.T) {
	t.Parallel()

	t.Run("delivers enqueued messages", func(t *testing.T) {
		rec := &recordingMailer{}
		d := NewDispatcher(rec, logger.NewNoOp())

		ctx, cancel := context.WithCancel(t.Context())
		stopped := d.Run(ctx)

		d.Enqueue(Message{To: "user@example.com", Subject: "Verification Email", Text: "hi"})
		d.Enqueue(Message{To: "user@example.com", Subject: "Reset password", Text: "hi again"})

		require.Eventually(t, func() bool {
			return len(rec.messages()) == 2
		}, time.Second, 10*time.Millisecond, "both messages should be delivered")

		cancel()
		<-stopped
	})

	t.Run("drains queue on shutdown", func(t *testing.T) {
		rec := &recordingMailer{}
		d := NewDispatcher(rec, logger.NewNoOp())

		// Enqueue before the worker even starts, then stop immediately
		d.Enqueue(Message{To: "user@example.com", Subject: "Verification Email"})

		ctx, cancel := context.WithCancel(t.Context())
		stopped := d.Run(ctx)
		cancel()
		<-stopped

		require.Len(t, rec.messages(), 1, "queued message should be delivered before stop")
	})

	t.Run("send failure does not stop the worker", func(t *testing.T) {
		rec := &recordingMailer{err: errors.New("smtp gone")}
		d := NewDispatcher(rec, logger.NewNoOp())

		ctx, cancel := context.WithCancel(t.Context())
		stopped := d.Run(ctx)

		d.Enqueue(Message{To: "user@example.com", Subject: "Verification Email"})
		time.Sleep(50 * time.Millisecond)

		rec.mu.Lock()
		rec.err = nil
		rec.mu.Unlock()

		d.Enqueue(Message{To: "user@example.com", Subject: "Reset password"})
		require.Eventually(t, func() bool {
			return len(rec.messages()) == 1
		}, time.Second, 10*time.Millisecond, "message after the failure should still be delivered")

		cancel()
		<-stopped
	})
}
