package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func nop(*Context, *MessageEvent, *MessageCommand) error { return nil }

func nopReaction(*Context, *ReactionEvent, *ReactionCommand) error { return nil }

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		cmd  MessageCommand
		text string
		want []string
	}{
		{"spaces", MessageCommand{Trigger: "echo", RequirePrefix: true}, "$echo  a  b ", []string{"a", "b"}},
		{"none", MessageCommand{Trigger: "echo", RequirePrefix: true}, "$echo", nil},
		{"only-space", MessageCommand{Trigger: "echo", RequirePrefix: true}, "$echo   ", nil},
		{"ping", MessageCommand{Trigger: "ping", RequirePrefix: true}, "!ping now", []string{"now"}},
		{"glued", MessageCommand{Trigger: "ping", RequirePrefix: true}, "!pingpong x", []string{"pong", "x"}},
		{"tabs", MessageCommand{Trigger: "say", RequirePrefix: true}, "!say\ta\n\nb", []string{"a", "b"}},
		{"multibyte-prefix", MessageCommand{Trigger: "say", RequirePrefix: true}, "€say hi", []string{"hi"}},
		{"unprefixed", MessageCommand{Trigger: "hey"}, "hey you there", []string{"you", "there"}},
		{"too-short", MessageCommand{Trigger: "echo", RequirePrefix: true}, "$ec", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Tokenize(&c.cmd, c.text)
			if diff := cmp.Diff(c.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("wrong args for %q (-want +got):\n%s", c.text, diff)
			}
		})
	}
}

func TestAddValidation(t *testing.T) {
	r := NewRegistry('!')
	cases := []struct {
		name string
		add  func() error
		err  error
	}{
		{"ok", func() error { return r.AddCommand(&MessageCommand{Trigger: "x", Handler: nop}) }, nil},
		{"empty-trigger", func() error { return r.AddCommand(&MessageCommand{Handler: nop}) }, ErrEmptyTrigger},
		{"nil-handler", func() error { return r.AddCommand(&MessageCommand{Trigger: "x"}) }, ErrNilHandler},
		{"reaction-ok", func() error { return r.AddReaction(&ReactionCommand{Emote: "🔥", OnAdd: nopReaction}) }, nil},
		{"empty-emote", func() error { return r.AddReaction(&ReactionCommand{OnAdd: nopReaction}) }, ErrEmptyEmote},
		{"nil-add", func() error { return r.AddReaction(&ReactionCommand{Emote: "🔥", OnRemove: nopReaction}) }, ErrNilHandler},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.add(); !errors.Is(err, c.err) {
				t.Errorf("wrong error: want %v, got %v", c.err, err)
			}
		})
	}
	if n := len(r.Commands()); n != 1 {
		t.Errorf("rejected commands were registered: have %d", n)
	}
	if n := len(r.Reactions()); n != 1 {
		t.Errorf("rejected reactions were registered: have %d", n)
	}
}

func TestSnapshotOrder(t *testing.T) {
	r := NewRegistry('!')
	a := &MessageCommand{Trigger: "a", Handler: nop}
	b := &MessageCommand{Trigger: "b", Handler: nop}
	for _, cmd := range []*MessageCommand{a, b, a} {
		if err := r.AddCommand(cmd); err != nil {
			t.Fatal(err)
		}
	}
	got := r.Commands()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != a {
		t.Fatalf("wrong registration order: %v", got)
	}
	got[0] = b
	if r.Commands()[0] != a {
		t.Error("snapshot aliases the registry")
	}
}

func TestFind(t *testing.T) {
	r := NewRegistry('$')
	echo := &MessageCommand{Descriptor: Descriptor{Label: "Echo"}, Trigger: "echo", RequirePrefix: true, Handler: nop}
	hi := &MessageCommand{Descriptor: Descriptor{Label: "Hi"}, Trigger: "hi", Handler: nop}
	for _, cmd := range []*MessageCommand{echo, hi} {
		if err := r.AddCommand(cmd); err != nil {
			t.Fatal(err)
		}
	}
	cases := []struct {
		name string
		arg  string
		want []string
	}{
		{"bare", "echo", []string{"Echo"}},
		{"prefixed", "$echo", []string{"Echo"}},
		{"unprefixed", "hi", []string{"Hi"}},
		{"unknown", "nope", nil},
		{"label", "Echo", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got []string
			for _, cmd := range r.Find(c.arg) {
				got = append(got, cmd.Label)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong commands (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderUsage(t *testing.T) {
	d := Descriptor{Usage: "$PREFIXhelp  or $PREFIXhelp <command>"}
	if got, want := d.RenderUsage('!'), "!help  or !help <command>"; got != want {
		t.Errorf("wrong usage: want %q, got %q", want, got)
	}
	cmd := MessageCommand{Trigger: "help", RequirePrefix: true}
	if got := cmd.Invocation('!'); got != "!help" {
		t.Errorf("wrong invocation: %q", got)
	}
	cmd.RequirePrefix = false
	if got := cmd.Invocation('!'); got != "help" {
		t.Errorf("wrong invocation: %q", got)
	}
}
