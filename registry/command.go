package registry

import (
	"errors"
	"strings"
)

// PrefixPlaceholder is replaced by the active prefix when a usage template is
// rendered.
const PrefixPlaceholder = "$PREFIX"

var (
	ErrEmptyTrigger = errors.New("command trigger is empty")
	ErrEmptyEmote   = errors.New("reaction emote is empty")
	ErrNilHandler   = errors.New("command handler is nil")
)

type (
	// MessageHandler runs a matched message command.
	MessageHandler func(ctx *Context, e *MessageEvent, cmd *MessageCommand) error
	// ReactionHandler runs a reaction command for an added or removed reaction.
	ReactionHandler func(ctx *Context, e *ReactionEvent, cmd *ReactionCommand) error
	// ClearHandler runs a reaction command when all reactions are removed
	// from a message.
	ClearHandler func(ctx *Context, e *ClearEvent, cmd *ReactionCommand) error
)

// Descriptor holds the fields shared by every command.
type Descriptor struct {
	Label       string
	Description string
	// Usage may contain PrefixPlaceholder.
	Usage string
}

// RenderUsage substitutes the prefix into the usage template.
func (d Descriptor) RenderUsage(prefix rune) string {
	return strings.ReplaceAll(d.Usage, PrefixPlaceholder, string(prefix))
}

// MessageCommand is triggered by message text. A command with RequirePrefix
// matches text of the form prefix+Trigger+..., otherwise Trigger+....
type MessageCommand struct {
	Descriptor
	Trigger       string
	RequirePrefix bool
	Handler       MessageHandler
}

// Invocation renders how a user types the command.
func (c *MessageCommand) Invocation(prefix rune) string {
	if c.RequirePrefix {
		return string(prefix) + c.Trigger
	}
	return c.Trigger
}

func (c *MessageCommand) validate() error {
	if c.Trigger == "" {
		return ErrEmptyTrigger
	}
	if c.Handler == nil {
		return ErrNilHandler
	}
	return nil
}

// ReactionCommand is triggered by reactions using Emote. OnAdd is required;
// OnRemove and OnClear may be nil, in which case the command ignores those
// lifecycle phases.
type ReactionCommand struct {
	Descriptor
	Emote    string
	OnAdd    ReactionHandler
	OnRemove ReactionHandler
	OnClear  ClearHandler
}

func (c *ReactionCommand) validate() error {
	if c.Emote == "" {
		return ErrEmptyEmote
	}
	if c.OnAdd == nil {
		return ErrNilHandler
	}
	return nil
}
