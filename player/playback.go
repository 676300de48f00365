package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
)

var ErrNoResults = errors.New("no results found")

// Play joins channelID and starts query, or queues it behind the current
// track. position is 0 when the track started immediately, otherwise its
// 1-based place in the queue.
func (p *Player) Play(ctx context.Context, client bot.Client, guildID, channelID snowflake.ID, query string, userData map[string]any) (track *lavalink.Track, position int, err error) {
	if err := client.UpdateVoiceState(ctx, guildID, &channelID, false, false); err != nil {
		return nil, 0, fmt.Errorf("failed to join voice channel: %w", err)
	}

	track, err = p.loadTrack(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	player := p.client.Player(guildID)
	if player.Track() == nil {
		if err := player.Update(ctx, lavalink.WithTrack(*track)); err != nil {
			return nil, 0, fmt.Errorf("failed to play track: %w", err)
		}
		return track, 0, nil
	}

	if _, err := p.AddToQueue(ctx, guildID, []QueueTrack{{Encoded: track.Encoded, UserData: userData}}); err != nil && !errors.Is(err, ErrQueueEmpty) {
		return nil, 0, fmt.Errorf("failed to queue track: %w", err)
	}
	queue, err := p.GetQueue(ctx, guildID)
	if err != nil {
		return track, 0, nil
	}
	return track, len(queue.Tracks), nil
}

// Stop ends playback and drops the queue.
func (p *Player) Stop(ctx context.Context, guildID snowflake.ID) error {
	clearErr := p.ClearQueue(ctx, guildID)
	player := p.client.Player(guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return errors.Join(fmt.Errorf("%w: %w", ErrFailedToStop, err), clearErr)
	}
	p.ClearControl(guildID)
	return clearErr
}

func (p *Player) Pause(ctx context.Context, guildID snowflake.ID, paused bool) error {
	player := p.client.Player(guildID)
	return player.Update(ctx, lavalink.WithPaused(paused))
}

func (p *Player) loadTrack(ctx context.Context, query string) (*lavalink.Track, error) {
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		query = "ytsearch:" + query
	}

	var (
		toPlay    *lavalink.Track
		searchErr error
	)
	p.client.BestNode().LoadTracksHandler(ctx, query, disgolink.NewResultHandler(
		func(track lavalink.Track) {
			toPlay = &track
		},
		func(playlist lavalink.Playlist) {
			if len(playlist.Tracks) > 0 {
				toPlay = &playlist.Tracks[0]
			}
		},
		func(tracks []lavalink.Track) {
			if len(tracks) > 0 {
				toPlay = &tracks[0]
			}
		},
		func() {
			searchErr = ErrNoResults
		},
		func(err error) {
			searchErr = err
		},
	))

	if searchErr != nil {
		return nil, searchErr
	}
	if toPlay == nil {
		return nil, ErrNoResults
	}
	return toPlay, nil
}
