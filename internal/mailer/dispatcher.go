package mailer

import (
	"context"

	"github.com/eliyaaki/auth-service/internal/logger"
)

const defaultQueueSize = 64

// Dispatcher decouples mail delivery from request handling.
// Services enqueue and move on, the worker sends in the background.
// Delivery failures are logged and never reach the request path
type Dispatcher struct {
	mailer Mailer
	logger logger.Logger
	queue  chan Message
}

func NewDispatcher(m Mailer, l logger.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: m,
		logger: l,
		queue:  make(chan Message, defaultQueueSize),
	}
}

// Run starts the delivery worker.
// The returned channel closes when the worker drained and stopped
func (d *Dispatcher) Run(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		for {
			select {
			case <-ctx.Done():
				// Drain what is queued already, then stop
				for {
					select {
					case msg := <-d.queue:
						d.send(context.Background(), msg)
					default:
						d.logger.Debug("Mail dispatcher stopped")
						return
					}
				}

			case msg := <-d.queue:
				d.send(ctx, msg)
			}
		}
	}()

	return stopped
}

// Enqueue message for delivery. Never blocks the caller:
// when the queue is full the message is dropped with a log line
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Error("Mail queue is full, message dropped", "to", msg.To, "subject", msg.Subject)
	}
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.logger.Error("Failed to send email", "error", err, "to", msg.To, "subject", msg.Subject)
		return
	}
	d.logger.Info("Email sent", "to", msg.To, "subject", msg.Subject)
}
