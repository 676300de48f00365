package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/disgoorg/disgo"
	"golang.org/x/sync/errgroup"

	"github.com/goland-express/herald/commands"
	"github.com/goland-express/herald/config"
	"github.com/goland-express/herald/gateway"
	"github.com/goland-express/herald/metrics"
	"github.com/goland-express/herald/modules"
	"github.com/goland-express/herald/registry"
	"github.com/goland-express/herald/types"
	"github.com/goland-express/herald/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Bot exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	botData := &types.BotData{StartTime: time.Now()}
	m := metrics.New("herald")

	loadedModules := []modules.Module{
		&commands.Builtin{Data: botData},
	}
	if cfg.MusicEnabled() {
		loadedModules = append(loadedModules, &modules.MusicModule{
			Host:     cfg.LavalinkHost,
			Password: cfg.LavalinkPassword,
			Data:     botData,
		})
	} else {
		logger.Warn("LAVALINK_HOST is not set, music commands are disabled")
	}

	b, err := gateway.New(ctx, gateway.Options{
		Token:        cfg.Token,
		Prefix:       cfg.PrefixRune(),
		Logging:      cfg.Logging,
		Logger:       logger,
		Modules:      loadedModules,
		Data:         botData,
		Router:       registry.IgnoreBots(registry.DefaultRouter{}),
		OnError:      onError(logger),
		Metrics:      m,
		ReadyTimeout: cfg.ReadyTimeout,
	})
	if err != nil {
		return err
	}

	logger.Info("Bot is running. Press CTRL-C to exit.",
		slog.String("prefix", string(cfg.PrefixRune())),
		slog.String("go_version", runtime.Version()),
		slog.String("disgo_version", disgo.Version),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.MetricsAddr, m.Collectors()...)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return b.Close(closeCtx)
	})
	return g.Wait()
}

// onError replies to the invoking channel with user errors and only logs
// everything else.
func onError(logger *slog.Logger) func(err error, inv *registry.Invocation) {
	return func(err error, inv *registry.Invocation) {
		attrs := []any{
			slog.Any("error", err),
			slog.String("kind", string(inv.Kind)),
			slog.String("command", inv.Label),
			slog.String("channel_id", inv.ChannelID.String()),
		}
		var userErr *utils.UserError
		if errors.As(err, &userErr) {
			if _, err := inv.Context.Say(inv.ChannelID, userErr.Message); err != nil {
				logger.Warn("Failed to send error reply", append(attrs, slog.Any("send_error", err))...)
			}
			return
		}
		var panicErr *registry.PanicError
		if errors.As(err, &panicErr) {
			logger.Error("Command panicked", append(attrs, slog.String("stack", string(panicErr.Stack)))...)
			return
		}
		logger.Error("An unexpected error occurred", attrs...)
	}
}
