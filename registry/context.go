package registry

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/herald/metrics"
	"github.com/goland-express/herald/utils"
)

var ErrNoClient = errors.New("context is not bound to a gateway client")

// Data is process state shared with every handler.
type Data any

type Options struct {
	Prefix  rune
	Data    Data
	Router  Router
	OnError func(err error, inv *Invocation)
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Runner starts a handler task. Nil starts each task on its own
	// goroutine.
	Runner func(task func())
}

// Context is the bot-wide state handed to every handler: the command
// registry, the gateway client, and shared data. It is also the entry point
// the gateway delivers events to.
type Context struct {
	*Registry

	data    Data
	router  Router
	onError func(err error, inv *Invocation)
	logger  *slog.Logger
	metrics *metrics.Metrics
	runner  func(task func())

	inflight sync.WaitGroup
	closeMu  sync.RWMutex
	closed   bool

	stateMu    sync.RWMutex
	client     bot.Client
	readyHooks []func(ctx *Context)
}

func New(opts Options) *Context {
	if opts.Router == nil {
		opts.Router = DefaultRouter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OnError == nil {
		opts.OnError = defaultErrorFunc
	}

	return &Context{
		Registry: NewRegistry(opts.Prefix),
		data:     opts.Data,
		router:   opts.Router,
		onError:  opts.OnError,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		runner:   opts.Runner,
	}
}

func defaultErrorFunc(err error, inv *Invocation) {
	var userErr *utils.UserError
	if errors.As(err, &userErr) {
		if _, sayErr := inv.Context.Say(inv.ChannelID, userErr.Message); sayErr != nil {
			inv.Context.Logger().Warn("Failed to report user error", slog.Any("error", sayErr))
		}
		return
	}
	inv.Context.Logger().Error("Error executing command",
		slog.Any("error", err),
		slog.String("kind", string(inv.Kind)),
		slog.String("command", inv.Label),
		slog.String("channel_id", inv.ChannelID.String()),
	)
}

func (c *Context) Data() Data {
	return c.data
}

func (c *Context) Logger() *slog.Logger {
	return c.logger
}

func (c *Context) Router() Router {
	return c.router
}

// Bind attaches the gateway client used for replies.
func (c *Context) Bind(client bot.Client) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.client = client
}

// Client returns the bound gateway client, or nil before Bind.
func (c *Context) Client() bot.Client {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.client
}

// OnReady adds a hook run once the gateway reports ready.
func (c *Context) OnReady(hook func(ctx *Context)) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.readyHooks = append(c.readyHooks, hook)
}

// Ready starts every ready hook as an independent task.
func (c *Context) Ready() {
	c.stateMu.RLock()
	hooks := c.readyHooks
	c.stateMu.RUnlock()
	for _, hook := range hooks {
		c.invoke(&Invocation{Context: c, Kind: KindReady, Label: "ready"}, func() error {
			hook(c)
			return nil
		})
	}
}

// Stop makes the context drop every later invocation, so that a following
// Wait is not racing new tasks. Routing still runs but invokes nothing.
func (c *Context) Stop() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	c.closed = true
}

// Wait blocks until every handler task started so far has finished. While
// events may still arrive, call Stop first.
func (c *Context) Wait() {
	c.inflight.Wait()
}

// HandleMessage routes an inbound message.
func (c *Context) HandleMessage(e *MessageEvent) {
	c.metrics.Event(string(KindMessage))
	c.router.RouteMessage(c, e)
}

// HandleReactionAdd routes an added reaction.
func (c *Context) HandleReactionAdd(e *ReactionEvent) {
	c.metrics.Event(string(KindReactionAdd))
	c.router.RouteReactionAdd(c, e)
}

// HandleReactionRemove routes a removed reaction.
func (c *Context) HandleReactionRemove(e *ReactionEvent) {
	c.metrics.Event(string(KindReactionRemove))
	c.router.RouteReactionRemove(c, e)
}

// HandleReactionClear routes the removal of all reactions from a message.
func (c *Context) HandleReactionClear(e *ClearEvent) {
	c.metrics.Event(string(KindReactionClear))
	c.router.RouteReactionClear(c, e)
}

func (c *Context) send(channelID snowflake.ID, msg discord.MessageCreate) (*discord.Message, error) {
	client := c.Client()
	if client == nil {
		return nil, ErrNoClient
	}
	return client.Rest().CreateMessage(channelID, msg)
}

// Say sends content to a channel.
func (c *Context) Say(channelID snowflake.ID, content string) (*discord.Message, error) {
	return c.send(channelID, discord.NewMessageCreateBuilder().SetContent(content).Build())
}

// Reply sends content to msg's channel as a reply to msg.
func (c *Context) Reply(msg discord.Message, content string) (*discord.Message, error) {
	builder := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetMessageReference(&discord.MessageReference{
			MessageID: utils.Ptr(msg.ID),
		})
	return c.send(msg.ChannelID, builder.Build())
}

// SendEmbed sends an embed to a channel.
func (c *Context) SendEmbed(channelID snowflake.ID, embed discord.Embed) (*discord.Message, error) {
	return c.send(channelID, discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
}

// React adds the bot's own reaction to a message.
func (c *Context) React(channelID, messageID snowflake.ID, emoji string) error {
	client := c.Client()
	if client == nil {
		return ErrNoClient
	}
	return client.Rest().AddReaction(channelID, messageID, emoji)
}
