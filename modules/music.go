package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/herald/player"
	"github.com/goland-express/herald/registry"
	"github.com/goland-express/herald/types"
	"github.com/goland-express/herald/utils"
)

// Reactions placed on the now-playing message.
const (
	EmotePause = "⏯️"
	EmoteSkip  = "⏭️"
	EmoteStop  = "⏹️"
)

// MusicModule plays audio through Lavalink. Playback is started with
// message commands and controlled with reactions on the now-playing
// message.
type MusicModule struct {
	Host     string
	Password string
	Data     *types.BotData
}

func (m *MusicModule) Name() string {
	return "Music"
}

func (m *MusicModule) Register(ctx *registry.Context) error {
	commands := []*registry.MessageCommand{
		{
			Descriptor: registry.Descriptor{
				Label:       "Play",
				Description: "Plays a song in your voice channel, or queues it.",
				Usage:       "$PREFIXplay <song or url>",
			},
			Trigger:       "play",
			RequirePrefix: true,
			Handler:       m.play,
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Skip",
				Description: "Skips to the next song in the queue.",
				Usage:       "$PREFIXskip",
			},
			Trigger:       "skip",
			RequirePrefix: true,
			Handler:       m.skip,
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Queue",
				Description: "Displays the current song queue.",
				Usage:       "$PREFIXqueue",
			},
			Trigger:       "queue",
			RequirePrefix: true,
			Handler:       m.queue,
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Stop",
				Description: "Stops playback and clears the queue.",
				Usage:       "$PREFIXstop",
			},
			Trigger:       "stop",
			RequirePrefix: true,
			Handler:       m.stop,
		},
	}
	for _, cmd := range commands {
		if err := ctx.AddCommand(cmd); err != nil {
			return err
		}
	}

	reactions := []*registry.ReactionCommand{
		{
			Descriptor: registry.Descriptor{
				Label:       "Pause",
				Description: "React to pause, remove the reaction to resume.",
			},
			Emote:    EmotePause,
			OnAdd:    m.control(pause(true)),
			OnRemove: m.control(pause(false)),
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Skip",
				Description: "React to skip the current song.",
			},
			Emote: EmoteSkip,
			OnAdd: m.control(m.skipTrack),
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Stop",
				Description: "React, or clear all reactions, to stop playback.",
			},
			Emote:   EmoteStop,
			OnAdd:   m.control(stopPlayback),
			OnClear: m.cleared,
		},
	}
	for _, cmd := range reactions {
		if err := ctx.AddReaction(cmd); err != nil {
			return err
		}
	}

	ctx.OnReady(m.connect)
	return nil
}

// connect creates the player once the gateway knows the bot's ID.
func (m *MusicModule) connect(ctx *registry.Context) {
	client := ctx.Client()
	pm, err := player.New(context.Background(), client.ID(), m.Host, m.Password, ctx.Logger())
	if err != nil {
		ctx.Logger().Error("Failed to initialize player", slog.Any("error", err))
		ctx.Logger().Warn("Bot will continue without music features")
		return
	}
	m.Data.SetPlayer(pm)

	client.EventManager().AddEventListeners(&events.ListenerAdapter{
		OnGuildVoiceStateUpdate: pm.OnVoiceStateUpdate,
		OnVoiceServerUpdate:     pm.OnVoiceServerUpdate,
	})
}

func (m *MusicModule) player() (*player.Player, error) {
	pm := m.Data.Player()
	if pm == nil {
		return nil, &utils.UserError{Message: "The music player is not available yet. Please try again in a moment."}
	}
	return pm, nil
}

func guildOnly(guildID *snowflake.ID) (snowflake.ID, error) {
	if guildID == nil {
		return 0, &utils.UserError{Message: "This command can only be used in a server."}
	}
	return *guildID, nil
}

func (m *MusicModule) play(ctx *registry.Context, e *registry.MessageEvent, cmd *registry.MessageCommand) error {
	guildID, err := guildOnly(e.Message.GuildID)
	if err != nil {
		return err
	}
	query := strings.Join(cmd.Args(e), " ")
	if query == "" {
		return utils.Userf("You need to specify a song to play. Usage: `%s`", cmd.RenderUsage(ctx.Prefix()))
	}
	pm, err := m.player()
	if err != nil {
		return err
	}

	author := e.Message.Author
	voiceState, ok := ctx.Client().Caches().VoiceState(guildID, author.ID)
	if !ok || voiceState.ChannelID == nil {
		return &utils.UserError{Message: "You must be in a voice channel to use this command."}
	}

	userData := map[string]any{
		"requesterId":   author.ID.String(),
		"requesterName": author.Username,
	}
	track, position, err := pm.Play(context.Background(), ctx.Client(), guildID, *voiceState.ChannelID, query, userData)
	if errors.Is(err, player.ErrNoResults) {
		return utils.Userf("Nothing found for `%s`.", query)
	}
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(track.Info.Title).
		SetColor(0x2371AB).
		AddField("Duration", utils.FormatDuration(int(track.Info.Length)), true).
		SetAuthor(track.Info.Author, "", "").
		SetFooter(fmt.Sprintf("Requested by %s", author.Username), author.EffectiveAvatarURL()).
		SetTimestamp(time.Now())
	if track.Info.URI != nil {
		embed.SetURL(*track.Info.URI)
	}
	if track.Info.ArtworkURL != nil {
		embed.SetThumbnail(*track.Info.ArtworkURL)
	}
	if position > 0 {
		embed.AddField("Position in Queue", fmt.Sprintf("%d", position), true)
	}

	msg, err := ctx.SendEmbed(e.Message.ChannelID, embed.Build())
	if err != nil {
		return err
	}
	if position > 0 {
		return nil
	}

	pm.SetControl(guildID, msg.ID)
	for _, emote := range []string{EmotePause, EmoteSkip, EmoteStop} {
		if err := ctx.React(msg.ChannelID, msg.ID, emote); err != nil {
			return fmt.Errorf("failed to add control reaction: %w", err)
		}
	}
	return nil
}

func (m *MusicModule) skip(ctx *registry.Context, e *registry.MessageEvent, _ *registry.MessageCommand) error {
	guildID, err := guildOnly(e.Message.GuildID)
	if err != nil {
		return err
	}
	pm, err := m.player()
	if err != nil {
		return err
	}
	return m.skipTrack(ctx, pm, guildID, e.Message.ChannelID)
}

func (m *MusicModule) skipTrack(ctx *registry.Context, pm *player.Player, guildID, channelID snowflake.ID) error {
	track, err := pm.NextTrack(context.Background(), guildID)
	if errors.Is(err, player.ErrQueueEmpty) {
		_, err := ctx.SendEmbed(channelID, discord.NewEmbedBuilder().
			SetDescription("The queue has ended.").
			SetColor(0x1DB954).
			Build())
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to skip track: %w", err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Song Skipped").
		SetDescription(fmt.Sprintf("Now playing: %s", trackLink(*track))).
		SetColor(0x1DB954)
	if track.Info.ArtworkURL != nil {
		embed.SetThumbnail(*track.Info.ArtworkURL)
	}
	_, err = ctx.SendEmbed(channelID, embed.Build())
	return err
}

func (m *MusicModule) stop(ctx *registry.Context, e *registry.MessageEvent, _ *registry.MessageCommand) error {
	guildID, err := guildOnly(e.Message.GuildID)
	if err != nil {
		return err
	}
	pm, err := m.player()
	if err != nil {
		return err
	}
	if err := stopPlayback(ctx, pm, guildID, e.Message.ChannelID); err != nil {
		return err
	}
	_, err = ctx.Reply(e.Message, "Stopped.")
	return err
}

func (m *MusicModule) queue(ctx *registry.Context, e *registry.MessageEvent, _ *registry.MessageCommand) error {
	guildID, err := guildOnly(e.Message.GuildID)
	if err != nil {
		return err
	}
	pm, err := m.player()
	if err != nil {
		return err
	}

	queue, err := pm.GetQueue(context.Background(), guildID)
	if err != nil {
		return fmt.Errorf("failed to get queue: %w", err)
	}
	lp := pm.GetPlayer(guildID)
	current := lp.Track()

	if current == nil && len(queue.Tracks) == 0 {
		_, err := ctx.Say(e.Message.ChannelID, "The queue is empty.")
		return err
	}

	embed := discord.NewEmbedBuilder().SetColor(0x5865F2)

	if current != nil {
		if current.Info.ArtworkURL != nil {
			embed.SetThumbnail(*current.Info.ArtworkURL)
		}
		info := fmt.Sprintf("%s - `%s` / `%s`",
			trackLink(*current),
			utils.FormatDuration(int(lp.Position())),
			utils.FormatDuration(int(current.Info.Length)))
		if reqID := player.RequesterID(*current); reqID != "" {
			info += fmt.Sprintf("\n- Requested by <@%s>", reqID)
		}
		embed.AddField("▶ Now Playing", info, false)
	}

	embed.AddFields(queueFields(queue.Tracks)...)
	embed.SetTimestamp(time.Now())
	embed.SetFooter(fmt.Sprintf("Requested by %s", e.Message.Author.Username), e.Message.Author.EffectiveAvatarURL())

	_, err = ctx.SendEmbed(e.Message.ChannelID, embed.Build())
	return err
}

// queueFields lists the first five upcoming tracks and the total length.
func queueFields(tracks []lavalink.Track) []discord.EmbedField {
	if len(tracks) == 0 {
		return nil
	}
	var (
		sb    strings.Builder
		total lavalink.Duration
	)
	for i, track := range tracks {
		total += track.Info.Length
		if i >= 5 {
			continue
		}
		fmt.Fprintf(&sb, "**%d.** %s - `%s`", i+1, trackLink(track), utils.FormatDuration(int(track.Info.Length)))
		if reqID := player.RequesterID(track); reqID != "" {
			fmt.Fprintf(&sb, "\n- Requested by <@%s>", reqID)
		}
		sb.WriteString("\n\n")
	}
	if len(tracks) > 5 {
		fmt.Fprintf(&sb, "*...and %d more track(s)*", len(tracks)-5)
	}
	return []discord.EmbedField{
		{Name: fmt.Sprintf("Up Next (%d)", len(tracks)), Value: sb.String()},
		{Name: "Total Queue Duration", Value: utils.FormatDuration(int(total)), Inline: utils.Ptr(true)},
	}
}

func trackLink(track lavalink.Track) string {
	if track.Info.URI == nil {
		return fmt.Sprintf("**%s**", track.Info.Title)
	}
	return fmt.Sprintf("**[%s](%s)**", track.Info.Title, *track.Info.URI)
}

// controlFunc acts on a guild's player in response to a control reaction.
type controlFunc func(ctx *registry.Context, pm *player.Player, guildID, channelID snowflake.ID) error

// control adapts fn to a reaction handler that only acts on the guild's
// current control message.
func (m *MusicModule) control(fn controlFunc) registry.ReactionHandler {
	return func(ctx *registry.Context, e *registry.ReactionEvent, _ *registry.ReactionCommand) error {
		pm := m.Data.Player()
		if pm == nil || e.Reaction.GuildID == nil {
			return nil
		}
		guildID := *e.Reaction.GuildID
		if !pm.IsControl(guildID, e.Reaction.MessageID) {
			return nil
		}
		return fn(ctx, pm, guildID, e.Reaction.ChannelID)
	}
}

func pause(paused bool) controlFunc {
	return func(_ *registry.Context, pm *player.Player, guildID, _ snowflake.ID) error {
		return pm.Pause(context.Background(), guildID, paused)
	}
}

func stopPlayback(_ *registry.Context, pm *player.Player, guildID, _ snowflake.ID) error {
	return pm.Stop(context.Background(), guildID)
}

// cleared stops playback when someone wipes the reactions off the control
// message, since the controls are gone with them.
func (m *MusicModule) cleared(ctx *registry.Context, e *registry.ClearEvent, _ *registry.ReactionCommand) error {
	pm := m.Data.Player()
	if pm == nil || e.GuildID == nil {
		return nil
	}
	if !pm.IsControl(*e.GuildID, e.MessageID) {
		return nil
	}
	return stopPlayback(ctx, pm, *e.GuildID, e.ChannelID)
}
