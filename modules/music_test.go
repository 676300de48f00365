package modules

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/goland-express/herald/registry"
	"github.com/goland-express/herald/types"
	"github.com/goland-express/herald/utils"
)

type errorLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *errorLog) add(err error, _ *registry.Invocation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func musicContext(t *testing.T) (*registry.Context, *errorLog) {
	t.Helper()
	log := &errorLog{}
	ctx := registry.New(registry.Options{
		Prefix:  '!',
		Logger:  slog.New(slog.DiscardHandler),
		Runner:  func(task func()) { task() },
		OnError: log.add,
	})
	m := &MusicModule{Data: &types.BotData{}}
	if err := m.Register(ctx); err != nil {
		t.Fatal(err)
	}
	return ctx, log
}

func TestMusicRegister(t *testing.T) {
	ctx, _ := musicContext(t)

	var triggers []string
	for _, cmd := range ctx.Commands() {
		triggers = append(triggers, cmd.Invocation(ctx.Prefix()))
	}
	if diff := cmp.Diff([]string{"!play", "!skip", "!queue", "!stop"}, triggers); diff != "" {
		t.Errorf("wrong commands (-want +got):\n%s", diff)
	}

	var emotes []string
	for _, cmd := range ctx.Reactions() {
		emotes = append(emotes, cmd.Emote)
	}
	if diff := cmp.Diff([]string{EmotePause, EmoteSkip, EmoteStop}, emotes); diff != "" {
		t.Errorf("wrong reactions (-want +got):\n%s", diff)
	}
}

func TestMusicUserErrors(t *testing.T) {
	guild := snowflake.ID(1)
	cases := []struct {
		name    string
		content string
		guildID *snowflake.ID
		want    string
	}{
		{"direct message", "!play song", nil, "only be used in a server"},
		{"no query", "!play", &guild, "Usage: `!play <song or url>`"},
		{"no player", "!play song", &guild, "not available yet"},
		{"skip without player", "!skip", &guild, "not available yet"},
		{"queue in direct message", "!queue", nil, "only be used in a server"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx, log := musicContext(t)
			ctx.HandleMessage(&registry.MessageEvent{Message: discord.Message{Content: c.content, GuildID: c.guildID}})
			if len(log.errs) != 1 {
				t.Fatalf("want one error, got %v", log.errs)
			}
			var userErr *utils.UserError
			if !errors.As(log.errs[0], &userErr) {
				t.Fatalf("want a user error, got %v", log.errs[0])
			}
			if !strings.Contains(userErr.Message, c.want) {
				t.Errorf("message %q does not contain %q", userErr.Message, c.want)
			}
		})
	}
}

func TestControlsIgnoredWithoutPlayer(t *testing.T) {
	ctx, log := musicContext(t)
	guild := snowflake.ID(1)
	for _, emote := range []string{EmotePause, EmoteSkip, EmoteStop} {
		e := &registry.ReactionEvent{Reaction: registry.Reaction{
			GuildID: &guild,
			Emoji:   discord.PartialEmoji{Name: utils.Ptr(emote)},
		}}
		ctx.HandleReactionAdd(e)
		ctx.HandleReactionRemove(e)
	}
	ctx.HandleReactionClear(&registry.ClearEvent{GuildID: &guild})
	if len(log.errs) != 0 {
		t.Errorf("controls failed without a player: %v", log.errs)
	}
}

func track(title string, length lavalink.Duration, uri *string) lavalink.Track {
	return lavalink.Track{Info: lavalink.TrackInfo{Title: title, Length: length, URI: uri}}
}

func TestTrackLink(t *testing.T) {
	if got := trackLink(track("a", 0, nil)); got != "**a**" {
		t.Errorf("without uri: %q", got)
	}
	if got := trackLink(track("a", 0, utils.Ptr("https://x"))); got != "**[a](https://x)**" {
		t.Errorf("with uri: %q", got)
	}
}

func TestQueueFields(t *testing.T) {
	if fields := queueFields(nil); fields != nil {
		t.Errorf("empty queue produced fields: %v", fields)
	}

	var tracks []lavalink.Track
	for range 7 {
		tracks = append(tracks, track("t", 60_000, nil))
	}
	fields := queueFields(tracks)
	if len(fields) != 2 {
		t.Fatalf("want 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "Up Next (7)" {
		t.Errorf("wrong heading %q", fields[0].Name)
	}
	if !strings.Contains(fields[0].Value, "**5.**") || strings.Contains(fields[0].Value, "**6.**") {
		t.Errorf("want the first five tracks listed:\n%s", fields[0].Value)
	}
	if !strings.Contains(fields[0].Value, "...and 2 more track(s)") {
		t.Errorf("missing overflow note:\n%s", fields[0].Value)
	}
	if fields[1].Value != "7:00" {
		t.Errorf("wrong total duration %q", fields[1].Value)
	}
}
