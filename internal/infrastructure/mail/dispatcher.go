package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/authhub/identity-service/internal/api/metrics"
	"github.com/authhub/identity-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher decouples email delivery from the request lifecycle: handlers
// enqueue, a fixed pool of workers drains the queue. A slow or failing
// mail transport never blocks or fails a registration.
type Dispatcher struct {
	queue   chan ports.Email
	sender  Sender
	workers int
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers delivery workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{
		queue:   make(chan ports.Email, channelBuffer),
		sender:  sender,
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
}

// Enqueue submits a message for background delivery. When the queue is
// full the message is dropped and logged rather than blocking the caller.
func (d *Dispatcher) Enqueue(msg ports.Email) {
	select {
	case d.queue <- msg:
	default:
		metrics.EmailsSentTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("to", msg.To).Msg("mail queue full, message dropped")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.sender.Send(msg); err != nil {
				metrics.EmailsSentTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("to", msg.To).
					Int("worker_id", id).
					Msg("email delivery failed")
				continue
			}
			metrics.EmailsSentTotal.WithLabelValues("ok").Inc()
		}
	}
}
