package registry

import (
	"log/slog"
	"unicode/utf8"
)

// Router turns inbound events into handler invocations. Custom routers
// usually embed another Router, run their own logic, then call the embedded
// method:
//
//	type quietChannel struct{ registry.Router }
//
//	func (r quietChannel) RouteMessage(ctx *registry.Context, e *registry.MessageEvent) {
//		if e.Message.ChannelID == muted {
//			return
//		}
//		r.Router.RouteMessage(ctx, e)
//	}
type Router interface {
	RouteMessage(ctx *Context, e *MessageEvent)
	RouteReactionAdd(ctx *Context, e *ReactionEvent)
	RouteReactionRemove(ctx *Context, e *ReactionEvent)
	RouteReactionClear(ctx *Context, e *ClearEvent)
}

// DefaultRouter invokes every command matching an event, in registration
// order. It never waits for handlers.
type DefaultRouter struct{}

var _ Router = DefaultRouter{}

// RouteMessage scans prefixed commands when the text starts with the prefix
// and unprefixed commands otherwise.
func (DefaultRouter) RouteMessage(ctx *Context, e *MessageEvent) {
	text := e.Text()
	if text == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(text)
	prefixed := first == ctx.Prefix()

	for _, cmd := range ctx.Commands() {
		if cmd.RequirePrefix != prefixed {
			continue
		}
		if !Matches(cmd, text) {
			continue
		}
		ctx.logger.Debug("Message command matched",
			slog.String("command", cmd.Label),
			slog.String("message_id", e.Message.ID.String()),
		)
		inv := &Invocation{
			Context:   ctx,
			Kind:      KindMessage,
			Label:     cmd.Label,
			ChannelID: e.Message.ChannelID,
			MessageID: e.Message.ID,
		}
		ctx.invoke(inv, func() error {
			return cmd.Handler(ctx, e, cmd)
		})
	}
}

// Matches reports whether text invokes cmd. For a prefixed command the
// trigger must follow the first character of text; otherwise it must start
// text. Text shorter than the match region never matches.
func Matches(cmd *MessageCommand, text string) bool {
	start := 0
	if cmd.RequirePrefix {
		_, start = utf8.DecodeRuneInString(text)
	}
	end := start + len(cmd.Trigger)
	if end > len(text) {
		return false
	}
	return text[start:end] == cmd.Trigger
}

// RouteReactionAdd invokes OnAdd of every command whose emote matches.
func (DefaultRouter) RouteReactionAdd(ctx *Context, e *ReactionEvent) {
	key := e.Reaction.EmoteKey()
	for _, cmd := range ctx.Reactions() {
		if cmd.Emote != key {
			continue
		}
		ctx.invoke(reactionInvocation(ctx, KindReactionAdd, cmd, e), func() error {
			return cmd.OnAdd(ctx, e, cmd)
		})
	}
}

// RouteReactionRemove invokes OnRemove of every command that has one and
// whose emote matches. Commands without OnRemove are skipped before any
// comparison.
func (DefaultRouter) RouteReactionRemove(ctx *Context, e *ReactionEvent) {
	key := e.Reaction.EmoteKey()
	for _, cmd := range ctx.Reactions() {
		if cmd.OnRemove == nil {
			continue
		}
		if cmd.Emote != key {
			continue
		}
		ctx.invoke(reactionInvocation(ctx, KindReactionRemove, cmd, e), func() error {
			return cmd.OnRemove(ctx, e, cmd)
		})
	}
}

// RouteReactionClear invokes OnClear of every command that has one. A clear
// removes reactions of every emote at once, so emotes are not compared.
func (DefaultRouter) RouteReactionClear(ctx *Context, e *ClearEvent) {
	for _, cmd := range ctx.Reactions() {
		if cmd.OnClear == nil {
			continue
		}
		inv := &Invocation{
			Context:   ctx,
			Kind:      KindReactionClear,
			Label:     cmd.Label,
			ChannelID: e.ChannelID,
			MessageID: e.MessageID,
		}
		ctx.invoke(inv, func() error {
			return cmd.OnClear(ctx, e, cmd)
		})
	}
}

func reactionInvocation(ctx *Context, kind Kind, cmd *ReactionCommand, e *ReactionEvent) *Invocation {
	return &Invocation{
		Context:   ctx,
		Kind:      kind,
		Label:     cmd.Label,
		ChannelID: e.Reaction.ChannelID,
		MessageID: e.Reaction.MessageID,
	}
}

// IgnoreBots drops messages written by bots and reactions made by the bound
// client's own bot user before passing events to next.
func IgnoreBots(next Router) Router {
	return ignoreBots{Router: next}
}

type ignoreBots struct {
	Router
}

func (r ignoreBots) RouteMessage(ctx *Context, e *MessageEvent) {
	if e.Message.Author.Bot {
		return
	}
	r.Router.RouteMessage(ctx, e)
}

func (r ignoreBots) RouteReactionAdd(ctx *Context, e *ReactionEvent) {
	if isSelf(ctx, e) {
		return
	}
	r.Router.RouteReactionAdd(ctx, e)
}

func (r ignoreBots) RouteReactionRemove(ctx *Context, e *ReactionEvent) {
	if isSelf(ctx, e) {
		return
	}
	r.Router.RouteReactionRemove(ctx, e)
}

func isSelf(ctx *Context, e *ReactionEvent) bool {
	client := ctx.Client()
	return client != nil && e.Reaction.UserID == client.ID()
}

