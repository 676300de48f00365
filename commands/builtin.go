package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/goland-express/herald/registry"
	"github.com/goland-express/herald/types"
	"github.com/goland-express/herald/utils"
)

// Builtin registers the commands every bot carries: echo, help and ping.
type Builtin struct {
	Data *types.BotData
}

func (b *Builtin) Name() string {
	return "Builtin"
}

func (b *Builtin) Register(ctx *registry.Context) error {
	for _, cmd := range []*registry.MessageCommand{
		{
			Descriptor: registry.Descriptor{
				Label:       "Help",
				Description: "Show all commands available.",
				Usage:       "$PREFIXhelp  or $PREFIXhelp <command>",
			},
			Trigger:       "help",
			RequirePrefix: true,
			Handler:       help,
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Echo",
				Description: "For testing!\nEchoes everything received.",
				Usage:       "$PREFIXecho ...",
			},
			Trigger:       "echo",
			RequirePrefix: true,
			Handler:       echo,
		},
		{
			Descriptor: registry.Descriptor{
				Label:       "Ping",
				Description: "Shows gateway latency and uptime.",
				Usage:       "$PREFIXping",
			},
			Trigger:       "ping",
			RequirePrefix: true,
			Handler:       b.ping,
		},
	} {
		if err := ctx.AddCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func echo(ctx *registry.Context, e *registry.MessageEvent, cmd *registry.MessageCommand) error {
	_, err := ctx.Say(e.Message.ChannelID, EchoText(e.Text(), cmd.Args(e)))
	return err
}

// EchoText renders the echo reply for content and its parsed arguments.
func EchoText(content string, args []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Message: %s\n\nArgs:", content)
	for _, arg := range args {
		sb.WriteString(" ")
		sb.WriteString(arg)
	}
	return sb.String()
}

func help(ctx *registry.Context, e *registry.MessageEvent, cmd *registry.MessageCommand) error {
	args := cmd.Args(e)
	if len(args) == 0 {
		_, err := ctx.Say(e.Message.ChannelID, HelpOverview(ctx.Prefix(), ctx.Commands()))
		return err
	}

	var found []*registry.MessageCommand
	for _, arg := range args {
		found = append(found, ctx.Find(arg)...)
	}
	if len(found) == 0 {
		return utils.Userf("No command matches `%s`.", strings.Join(args, " "))
	}
	_, err := ctx.Say(e.Message.ChannelID, HelpDetail(ctx.Prefix(), found))
	return err
}

// HelpOverview lists every command's label and how to invoke it.
func HelpOverview(prefix rune, cmds []*registry.MessageCommand) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ">>> Use *%chelp <command>* for command description.\n\n", prefix)
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "**%-20s *%s*\n", cmd.Label+":**", cmd.Invocation(prefix))
	}
	return sb.String()
}

// HelpDetail describes each of cmds with its rendered usage.
func HelpDetail(prefix rune, cmds []*registry.MessageCommand) string {
	var sb strings.Builder
	sb.WriteString(">>> ")
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "**%s**  |  Usage: *%s*\n%s\n\n", cmd.Label, cmd.RenderUsage(prefix), cmd.Description)
	}
	return sb.String()
}

func (b *Builtin) ping(ctx *registry.Context, e *registry.MessageEvent, _ *registry.MessageCommand) error {
	client := ctx.Client()
	if client == nil {
		return registry.ErrNoClient
	}
	embed := discord.NewEmbedBuilder().
		SetTitle("Pong").
		SetDescription(PingText(client.Gateway().Latency(), time.Since(b.Data.StartTime))).
		SetColor(0x00FF00).
		SetTimestamp(time.Now()).
		Build()
	_, err := ctx.SendEmbed(e.Message.ChannelID, embed)
	return err
}

func PingText(latency, uptime time.Duration) string {
	return fmt.Sprintf("Latency: **%dms**\nUptime: **%s**", latency.Milliseconds(), utils.FormatUptime(uptime))
}
