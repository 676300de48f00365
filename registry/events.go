package registry

import (
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// MessageEvent is an inbound text message.
type MessageEvent struct {
	Message discord.Message
}

// Text is the message content the routers match against.
func (e *MessageEvent) Text() string {
	return e.Message.Content
}

// Reaction describes a single reaction on a message.
type Reaction struct {
	UserID    snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	GuildID   *snowflake.ID
	Emoji     discord.PartialEmoji
}

// EmoteKey is the string reaction commands are compared against: the
// unicode emoji itself, or the name of a custom emoji.
func (r Reaction) EmoteKey() string {
	if r.Emoji.Name == nil {
		return ""
	}
	return *r.Emoji.Name
}

// Resolver looks up the message and channel a reaction refers to. A message
// that cannot be resolved is returned with only its IDs set; an unknown
// channel is nil.
type Resolver interface {
	ResolveMessage(channelID, messageID snowflake.ID) discord.Message
	ResolveChannel(channelID snowflake.ID) discord.Channel
}

// refs resolves a message and its channel on first use. Routing only needs
// IDs, so lookups happen inside handler tasks, once per event.
type refs struct {
	message func() discord.Message
	channel func() discord.Channel
}

func newRefs(res Resolver, channelID, messageID snowflake.ID) refs {
	if res == nil {
		return refs{}
	}
	return refs{
		message: sync.OnceValue(func() discord.Message {
			return res.ResolveMessage(channelID, messageID)
		}),
		channel: sync.OnceValue(func() discord.Channel {
			return res.ResolveChannel(channelID)
		}),
	}
}

func (r refs) resolveMessage(channelID, messageID snowflake.ID) discord.Message {
	if r.message == nil {
		return discord.Message{ID: messageID, ChannelID: channelID}
	}
	return r.message()
}

func (r refs) resolveChannel() discord.Channel {
	if r.channel == nil {
		return nil
	}
	return r.channel()
}

// ReactionEvent is an added or removed reaction.
type ReactionEvent struct {
	Reaction Reaction

	refs refs
}

// NewReactionEvent creates an event whose message and channel are looked up
// through res when a handler first asks for them.
func NewReactionEvent(r Reaction, res Resolver) *ReactionEvent {
	return &ReactionEvent{Reaction: r, refs: newRefs(res, r.ChannelID, r.MessageID)}
}

// Message returns the reacted-to message. The lookup may block, so call it
// from handlers, not routers.
func (e *ReactionEvent) Message() discord.Message {
	return e.refs.resolveMessage(e.Reaction.ChannelID, e.Reaction.MessageID)
}

// Channel returns the channel of the reacted-to message, or nil.
func (e *ReactionEvent) Channel() discord.Channel {
	return e.refs.resolveChannel()
}

// ClearEvent is the removal of every reaction on a message.
type ClearEvent struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	GuildID   *snowflake.ID

	refs refs
}

// NewClearEvent creates a clear event resolved lazily through res.
func NewClearEvent(channelID, messageID snowflake.ID, guildID *snowflake.ID, res Resolver) *ClearEvent {
	return &ClearEvent{
		ChannelID: channelID,
		MessageID: messageID,
		GuildID:   guildID,
		refs:      newRefs(res, channelID, messageID),
	}
}

// Message returns the cleared message. Like ReactionEvent.Message it may
// block.
func (e *ClearEvent) Message() discord.Message {
	return e.refs.resolveMessage(e.ChannelID, e.MessageID)
}

func (e *ClearEvent) Channel() discord.Channel {
	return e.refs.resolveChannel()
}
