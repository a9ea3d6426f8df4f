// Command mdbookd is the process entrypoint: it loads configuration,
// stands up the library's shards, starts the subscriber on every
// configured channel, and exposes the subscriber.status/subscriber.resend
// diagnostic commands (spec section 6), in the teacher's
// cmd/dbn-go-live-style wiring (flags -> Config -> run(config) error).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nimblemarkets/mdbook/config"
	"github.com/nimblemarkets/mdbook/diag"
	"github.com/nimblemarkets/mdbook/library"
	"github.com/nimblemarkets/mdbook/shard"
	"github.com/nimblemarkets/mdbook/subscriber"
	"github.com/nimblemarkets/mdbook/wire"
)

func main() {
	var configPath string
	var verbose bool
	var showHelp bool
	var diagArgs []string

	pflag.StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -c <config> [-- status | resend LINK SEQNO COUNT]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "missing required --config")
		os.Exit(1)
	}
	diagArgs = pflag.Args()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(configPath, logger, diagArgs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger, diagArgs []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("[run] load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("[run] validate config: %w", err)
	}

	channels, err := cfg.LoadChannels()
	if err != nil {
		return fmt.Errorf("[run] load channels: %w", err)
	}

	shards := make([]*shard.Shard, len(cfg.Shards))
	for i, sc := range cfg.Shards {
		shards[i] = shard.New(i, sc.Thread, shard.DefaultQueueSize, logger.With("shard", sc.ID))
	}
	shardFunc := library.DefaultShardFunc(len(shards))

	lib := library.New(shards, shardFunc, nil, nil)
	lib.Logger = logger.With("component", "library")

	sub := subscriber.New(cfg.Tuning(), logger.With("component", "subscriber"), func(hdr wire.Hdr, body []byte) error {
		return lib.Apply(hdr, body)
	})
	for _, lc := range channels {
		sub.AddChannel(lc)
	}

	if len(diagArgs) > 0 {
		root := diag.NewRootCmd(sub)
		root.SetArgs(diagArgs)
		return root.Execute()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("[run] starting subscriber", "channels", len(channels), "shards", len(shards))
	return sub.Run(ctx)
}
