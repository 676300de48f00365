package player

import (
	"context"

	"github.com/disgoorg/disgo/events"
)

// OnVoiceStateUpdate forwards the bot's own voice state to Lavalink.
func (p *Player) OnVoiceStateUpdate(e *events.GuildVoiceStateUpdate) {
	if e.VoiceState.UserID != e.Client().ID() {
		return
	}
	if e.VoiceState.ChannelID == nil {
		p.ClearControl(e.VoiceState.GuildID)
	}
	p.client.OnVoiceStateUpdate(
		context.Background(),
		e.VoiceState.GuildID,
		e.VoiceState.ChannelID,
		e.VoiceState.SessionID,
	)
}

func (p *Player) OnVoiceServerUpdate(e *events.VoiceServerUpdate) {
	if e.Endpoint == nil {
		return
	}
	p.client.OnVoiceServerUpdate(
		context.Background(),
		e.GuildID,
		e.Token,
		*e.Endpoint,
	)
}
