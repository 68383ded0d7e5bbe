package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yli59577/puyuann/pkg/slogx"
	"golang.org/x/time/rate"
)

var (
	ErrQueueFull = errors.New("notify: queue full")
	ErrClosed    = errors.New("notify: dispatcher closed")
)

// DeliveryError reports a message that could not be sent.
type DeliveryError struct {
	Message Message
	Err     error
}

func (e DeliveryError) Error() string {
	return "notify: deliver " + string(e.Message.Kind) + ": " + e.Err.Error()
}

func (e DeliveryError) Unwrap() error { return e.Err }

type DispatcherConfig struct {
	QueueSize     int
	Workers       int
	RatePerSecond float64
	SendTimeout   time.Duration
	// CodeWindow is quoted in verification mails.
	CodeWindow time.Duration
}

// Dispatcher queues messages and sends them from background workers, paced
// by a token bucket so a burst of signups cannot flood the mail relay.
type Dispatcher struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *slog.Logger
	cfg     DispatcherConfig

	queue chan Message
	errs  chan DeliveryError

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit, burst := rate.Inf, 1
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		burst = max(1, int(cfg.RatePerSecond))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		cfg:     cfg,
		queue:   make(chan Message, cfg.QueueSize),
		errs:    make(chan DeliveryError, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for range d.cfg.Workers {
		d.wg.Add(1)
		go d.work()
	}
	d.logger.Info("mail dispatcher started", slog.Int("workers", d.cfg.Workers))
}

// Stop refuses new messages and waits for queued ones to drain. When ctx
// ends first, in-flight sends are cancelled and the rest are dropped.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("mail dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		d.logger.Warn("mail dispatcher stopped before queue drained")
		return ctx.Err()
	}
}

// Errors exposes failed deliveries. The channel is buffered; when nobody
// reads it, further failures are only logged.
func (d *Dispatcher) Errors() <-chan DeliveryError {
	return d.errs
}

// Enqueue schedules msg without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) DeliverVerificationCode(ctx context.Context, email, code string) error {
	msg, err := render(KindVerificationCode, email, templateData{Code: code, Window: humanWindow(d.cfg.CodeWindow)})
	if err != nil {
		return err
	}
	return d.Enqueue(msg)
}

func (d *Dispatcher) DeliverTemporaryCredential(ctx context.Context, email, credential string) error {
	msg, err := render(KindTemporaryCredential, email, templateData{Credential: credential})
	if err != nil {
		return err
	}
	return d.Enqueue(msg)
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for msg := range d.queue {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.fail(msg, err)
			continue
		}

		ctx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
		err := d.sender.Send(ctx, msg)
		cancel()
		if err != nil {
			d.fail(msg, err)
			continue
		}
		d.logger.Debug("mail delivered", slog.String("kind", string(msg.Kind)), slogx.Email(msg.To))
	}
}

func (d *Dispatcher) fail(msg Message, err error) {
	d.logger.Error("mail delivery failed",
		slog.String("kind", string(msg.Kind)),
		slogx.Email(msg.To),
		slog.Any("error", err),
	)
	select {
	case d.errs <- DeliveryError{Message: msg, Err: err}:
	default:
	}
}
