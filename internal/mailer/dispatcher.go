package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// sendTimeout bounds a single delivery attempt so a wedged SMTP relay cannot
// pin a worker forever.
const sendTimeout = 30 * time.Second

// Queue accepts messages for asynchronous delivery.
type Queue interface {
	// Enqueue schedules a message for delivery. It never blocks; when the
	// queue is full the message is dropped and an error returned. Callers on
	// the request path treat that as a logged non-event.
	Enqueue(msg Message) error
}

// DispatcherConfig holds configuration for the dispatcher.
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers deliver messages.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory queue.
	QueueSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   64,
	}
}

// Dispatcher fans queued messages out to a pool of delivery workers.
// Failures are logged and dropped; nothing upstream ever waits on delivery.
type Dispatcher struct {
	sender     Sender
	msgChan    chan Message
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     DispatcherConfig
	logger     *slog.Logger

	// mu orders Enqueue against Stop so a late caller gets an error
	// instead of a send on the closed channel.
	mu      sync.Mutex
	stopped bool
}

// Ensure Dispatcher implements Queue
var _ Queue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher delivering through sender.
func NewDispatcher(sender Sender, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultDispatcherConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		sender:     sender,
		msgChan:    make(chan Message, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "mail_dispatcher")),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("mail dispatcher started",
		slog.Int("workers", d.config.WorkerCount),
		slog.Int("queue_size", d.config.QueueSize))
}

// Stop accepts no further work and waits for in-flight deliveries to finish.
// It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.msgChan)
	d.mu.Unlock()

	// Let the workers drain what was already accepted, then release the
	// context backing their send timeouts.
	d.wg.Wait()
	d.cancelFunc()
	d.logger.Info("mail dispatcher stopped")
}

// Enqueue implements Queue. After Stop it returns an error rather than
// accepting mail that would never be delivered.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return fmt.Errorf("mail dispatcher is stopped")
	}

	select {
	case d.msgChan <- msg:
		return nil
	default:
		return fmt.Errorf("mail queue is full")
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	log := d.logger.With(slog.Int("worker_id", id))
	for msg := range d.msgChan {
		ctx, cancel := context.WithTimeout(d.ctx, sendTimeout)
		err := d.sender.Send(ctx, msg)
		cancel()

		if err != nil {
			// Fire-and-forget: log and move on, never retry into a wedged
			// relay from the same queue.
			log.Error("failed to deliver email",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()))
			continue
		}

		log.Debug("email delivered", slog.String("subject", msg.Subject))
	}
}
