package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goland-express/herald/metrics"
	"github.com/goland-express/herald/modules"
	"github.com/goland-express/herald/registry"
)

var ErrNotReady = errors.New("gateway did not become ready")

type Options struct {
	Token  string
	Prefix rune
	// Logging enables the gateway connection's log stream.
	Logging bool
	Logger  *slog.Logger

	Modules []modules.Module
	Data    registry.Data
	Router  registry.Router
	OnError func(err error, inv *registry.Invocation)
	Metrics *metrics.Metrics

	// ReadyTimeout bounds the wait for the gateway's ready signal. Zero
	// waits as long as the context passed to New allows.
	ReadyTimeout time.Duration
	// Dial creates the connection. Nil uses DialDisgo.
	Dial Dialer
}

// Bot is a command context attached to a live gateway connection.
type Bot struct {
	ctx    *registry.Context
	conn   Conn
	logger *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New builds the command context, registers modules, connects to the
// gateway and blocks until the connection reports ready, so that the
// returned Bot is already routing events. A failure at any step is returned
// and nothing keeps running.
func New(ctx context.Context, opts Options) (*Bot, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dial == nil {
		opts.Dial = DialDisgo
	}

	b := &Bot{
		ctx: registry.New(registry.Options{
			Prefix:  opts.Prefix,
			Data:    opts.Data,
			Router:  opts.Router,
			OnError: opts.OnError,
			Logger:  opts.Logger,
			Metrics: opts.Metrics,
		}),
		logger: opts.Logger,
		ready:  make(chan struct{}),
	}

	for _, module := range opts.Modules {
		if err := module.Register(b.ctx); err != nil {
			return nil, fmt.Errorf("failed to register module %s: %w", module.Name(), err)
		}
		opts.Logger.Info("Module loaded", slog.String("module", module.Name()))
	}

	log := slog.New(slog.DiscardHandler)
	if opts.Logging {
		log = opts.Logger.With(slog.String("component", "gateway"))
	}
	conn, err := opts.Dial(opts.Token, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway connection: %w", err)
	}
	b.conn = conn
	b.ctx.Bind(conn.Client())

	conn.Listen(Listeners{
		OnReady:          b.onReady,
		OnMessage:        b.ctx.HandleMessage,
		OnReactionAdd:    b.ctx.HandleReactionAdd,
		OnReactionRemove: b.ctx.HandleReactionRemove,
		OnReactionClear:  b.ctx.HandleReactionClear,
	})

	if err := conn.Open(ctx); err != nil {
		conn.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	if err := b.waitReady(ctx, opts.ReadyTimeout); err != nil {
		conn.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return b, nil
}

func (b *Bot) onReady() {
	b.readyOnce.Do(func() {
		b.ctx.Ready()
		close(b.ready)
	})
}

func (b *Bot) waitReady(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// Context returns the command context events are routed through.
func (b *Bot) Context() *registry.Context {
	return b.ctx
}

// Close disconnects from the gateway and waits for running handlers to
// finish or for ctx to end, whichever is first. Events delivered after Close
// starts are not handled.
func (b *Bot) Close(ctx context.Context) error {
	b.ctx.Stop()
	b.conn.Close(ctx)

	done := make(chan struct{})
	go func() {
		b.ctx.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Handlers still running at shutdown", slog.Any("error", ctx.Err()))
		return ctx.Err()
	}
}
