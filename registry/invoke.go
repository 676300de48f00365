package registry

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/disgoorg/snowflake/v2"
)

// Kind names the event that caused a handler invocation.
type Kind string

const (
	KindMessage        Kind = "message"
	KindReactionAdd    Kind = "reaction_add"
	KindReactionRemove Kind = "reaction_remove"
	KindReactionClear  Kind = "reaction_clear"
	KindReady          Kind = "ready"
)

// Invocation describes one handler run, for error reporting.
type Invocation struct {
	Context   *Context
	Kind      Kind
	Label     string
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// PanicError is reported to the error hook when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// invoke runs fn as an independent task. Neither its error nor a panic
// escapes the task; both go to the error hook.
func (c *Context) invoke(inv *Invocation, fn func() error) {
	c.closeMu.RLock()
	if c.closed {
		c.closeMu.RUnlock()
		c.logger.Debug("Dropped invocation after stop",
			slog.String("kind", string(inv.Kind)),
			slog.String("command", inv.Label),
		)
		return
	}
	c.inflight.Add(1)
	c.closeMu.RUnlock()

	c.metrics.Invocation(string(inv.Kind), inv.Label)
	task := func() {
		defer c.inflight.Done()
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			c.metrics.Panic(string(inv.Kind), inv.Label)
			c.report(&PanicError{Value: r, Stack: debug.Stack()}, inv)
		}()
		if err := fn(); err != nil {
			c.metrics.Failure(string(inv.Kind), inv.Label)
			c.report(err, inv)
		}
	}
	if c.runner == nil {
		go task()
		return
	}
	c.runner(task)
}

// report hands err to the error hook, keeping a faulty hook from taking the
// task down with it.
func (c *Context) report(err error, inv *Invocation) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Error hook panicked",
				slog.Any("panic", r),
				slog.Any("error", err),
				slog.String("command", inv.Label),
			)
		}
	}()
	c.onError(err, inv)
}
