package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	dgateway "github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/herald/registry"
)

const resolveTimeout = 5 * time.Second

// cacheFlags leaves messages out: the cache would hold every message seen
// for the life of the process.
var cacheFlags = []cache.Flags{
	cache.FlagGuilds,
	cache.FlagChannels,
	cache.FlagVoiceStates,
}

var (
	_ Conn              = (*disgoConn)(nil)
	_ registry.Resolver = (*disgoConn)(nil)
)

type disgoConn struct {
	client bot.Client
	log    *slog.Logger
}

// DialDisgo creates a disgo client subscribed to messages, reactions and
// voice states. Messages are not cached; reacted-to messages are fetched
// when a handler asks for them.
func DialDisgo(token string, log *slog.Logger) (Conn, error) {
	c, err := dialDisgo(token, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func dialDisgo(token string, log *slog.Logger, opts ...bot.ConfigOpt) (*disgoConn, error) {
	opts = append([]bot.ConfigOpt{
		bot.WithLogger(log),
		bot.WithGatewayConfigOpts(
			dgateway.WithIntents(
				dgateway.IntentGuilds,
				dgateway.IntentGuildMessages,
				dgateway.IntentGuildMessageReactions,
				dgateway.IntentDirectMessages,
				dgateway.IntentDirectMessageReactions,
				dgateway.IntentGuildVoiceStates,
				dgateway.IntentMessageContent,
			),
		),
		bot.WithCacheConfigOpts(cache.WithCaches(cacheFlags...)),
	}, opts...)
	client, err := disgo.New(token, opts...)
	if err != nil {
		return nil, err
	}
	return &disgoConn{client: client, log: log}, nil
}

func (c *disgoConn) Listen(l Listeners) {
	c.client.EventManager().AddEventListeners(c.listener(l))
}

// listener adapts disgo events to l. disgo dispatches synchronously, so
// nothing here may block on the network.
func (c *disgoConn) listener(l Listeners) *events.ListenerAdapter {
	return &events.ListenerAdapter{
		OnReady: func(e *events.Ready) {
			c.log.Info("Gateway ready",
				slog.String("username", e.User.Username),
				slog.String("user_id", e.User.ID.String()),
				slog.Int("guilds", len(e.Guilds)),
				slog.String("disgo_version", disgo.Version),
			)
			l.OnReady()
		},
		OnMessageCreate: func(e *events.MessageCreate) {
			l.OnMessage(&registry.MessageEvent{Message: e.Message})
		},
		OnMessageReactionAdd: func(e *events.MessageReactionAdd) {
			l.OnReactionAdd(c.reactionEvent(e.GenericReaction))
		},
		OnMessageReactionRemove: func(e *events.MessageReactionRemove) {
			l.OnReactionRemove(c.reactionEvent(e.GenericReaction))
		},
		OnMessageReactionRemoveAll: func(e *events.MessageReactionRemoveAll) {
			l.OnReactionClear(registry.NewClearEvent(e.ChannelID, e.MessageID, e.GuildID, c))
		},
	}
}

func (c *disgoConn) Open(ctx context.Context) error {
	return c.client.OpenGateway(ctx)
}

func (c *disgoConn) Close(ctx context.Context) {
	c.client.Close(ctx)
}

func (c *disgoConn) Client() bot.Client {
	return c.client
}

func (c *disgoConn) reactionEvent(e *events.GenericReaction) *registry.ReactionEvent {
	return registry.NewReactionEvent(registry.Reaction{
		UserID:    e.UserID,
		ChannelID: e.ChannelID,
		MessageID: e.MessageID,
		GuildID:   e.GuildID,
		Emoji:     e.Emoji,
	}, c)
}

// ResolveMessage looks the message up in the cache, then over REST. A
// message that cannot be resolved is returned with only its IDs set.
func (c *disgoConn) ResolveMessage(channelID, messageID snowflake.ID) discord.Message {
	if msg, ok := c.client.Caches().Message(channelID, messageID); ok {
		return msg
	}
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	msg, err := c.client.Rest().GetMessage(channelID, messageID, rest.WithCtx(ctx))
	if err != nil {
		c.log.Debug("Failed to resolve message",
			slog.String("channel_id", channelID.String()),
			slog.String("message_id", messageID.String()),
			slog.Any("error", err),
		)
		return discord.Message{ID: messageID, ChannelID: channelID}
	}
	return *msg
}

// ResolveChannel looks the channel up in the cache, then over REST. It
// returns nil when neither knows the channel.
func (c *disgoConn) ResolveChannel(channelID snowflake.ID) discord.Channel {
	if ch, ok := c.client.Caches().Channel(channelID); ok {
		return ch
	}
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	ch, err := c.client.Rest().GetChannel(channelID, rest.WithCtx(ctx))
	if err != nil {
		c.log.Debug("Failed to resolve channel",
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err),
		)
		return nil
	}
	return ch
}
