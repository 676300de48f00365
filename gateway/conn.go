package gateway

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"

	"github.com/goland-express/herald/registry"
)

// Listeners are the callbacks a Conn delivers gateway events to. Message and
// channel references carried by reaction events are resolved by the Conn
// before the callback runs.
type Listeners struct {
	OnReady          func()
	OnMessage        func(e *registry.MessageEvent)
	OnReactionAdd    func(e *registry.ReactionEvent)
	OnReactionRemove func(e *registry.ReactionEvent)
	OnReactionClear  func(e *registry.ClearEvent)
}

// Conn is a connection to the chat gateway.
type Conn interface {
	// Listen registers the event callbacks. It is called once, before Open.
	Listen(l Listeners)
	// Open authenticates and starts receiving events. Events may arrive
	// before Open returns.
	Open(ctx context.Context) error
	Close(ctx context.Context)
	// Client is the handle handlers use to talk back to the gateway.
	Client() bot.Client
}

// Dialer creates a Conn authenticating with token. log receives the
// connection's own log stream.
type Dialer func(token string, log *slog.Logger) (Conn, error)
