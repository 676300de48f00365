package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
)

// Player plays audio through a Lavalink node and remembers, per guild, the
// message whose reactions control playback.
type Player struct {
	client disgolink.Client
	logger *slog.Logger

	mu       sync.Mutex
	controls map[snowflake.ID]snowflake.ID
}

// New connects to the Lavalink node at host.
func New(ctx context.Context, appID snowflake.ID, host, password string, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := newPlayer(logger)
	p.client = disgolink.New(appID,
		disgolink.WithPlugins(newQueuePlugin(p)),
	)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger.Info("Connecting to Lavalink...", slog.String("host", host))
	node, err := p.client.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  host,
		Password: password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add lavalink node: %w", err)
	}
	logger.Info("Lavalink node added", slog.String("address", node.Config().Address))

	return p, nil
}

func newPlayer(logger *slog.Logger) *Player {
	return &Player{
		logger:   logger,
		controls: make(map[snowflake.ID]snowflake.ID),
	}
}

func (p *Player) GetPlayer(guildID snowflake.ID) disgolink.Player {
	return p.client.Player(guildID)
}

func (p *Player) BestNode() disgolink.Node {
	return p.client.BestNode()
}

// SetControl makes messageID the guild's control message, replacing any
// previous one.
func (p *Player) SetControl(guildID, messageID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controls[guildID] = messageID
}

// IsControl reports whether messageID is the guild's control message.
func (p *Player) IsControl(guildID, messageID snowflake.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.controls[guildID]
	return ok && id == messageID
}

// ClearControl forgets the guild's control message.
func (p *Player) ClearControl(guildID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.controls, guildID)
}

var (
	_ disgolink.EventPlugins = (*queuePlugin)(nil)
	_ disgolink.Plugin       = (*queuePlugin)(nil)
)

type queuePlugin struct {
	eventPlugins []disgolink.EventPlugin
}

func newQueuePlugin(p *Player) *queuePlugin {
	return &queuePlugin{
		eventPlugins: []disgolink.EventPlugin{
			&queueEndHandler{player: p},
		},
	}
}

func (p *queuePlugin) EventPlugins() []disgolink.EventPlugin {
	return p.eventPlugins
}

func (p *queuePlugin) Name() string {
	return "lavaqueue"
}

func (p *queuePlugin) Version() string {
	return "0.0.0"
}

var _ disgolink.EventPlugin = (*queueEndHandler)(nil)

// queueEndHandler retires a guild's control message once nothing is left
// to play.
type queueEndHandler struct {
	player *Player
}

func (h *queueEndHandler) Event() lavalink.EventType {
	return EventTypeQueueEnd
}

func (h *queueEndHandler) OnEventInvocation(_ disgolink.Player, data []byte) {
	var e QueueEndEvent
	if err := json.Unmarshal(data, &e); err != nil {
		h.player.logger.Error("Failed to unmarshal QueueEndEvent", slog.Any("error", err))
		return
	}
	h.player.ClearControl(e.GuildID)
	h.player.logger.Info("Queue ended", slog.String("guild_id", e.GuildID.String()))
}

const (
	EventTypeQueueEnd lavalink.EventType = "QueueEndEvent"
)

type QueueEndEvent struct {
	OpValue   lavalink.Op        `json:"op"`
	TypeValue lavalink.EventType `json:"type"`
	GuildID   snowflake.ID       `json:"guildId"`
}

func (e QueueEndEvent) Op() lavalink.Op {
	return e.OpValue
}

func (e QueueEndEvent) Type() lavalink.EventType {
	return e.TypeValue
}
