package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"notifyScope/internal/chain"
	"notifyScope/internal/config"
	"notifyScope/internal/hub"
	"notifyScope/internal/model"
	"notifyScope/internal/processor"
	"notifyScope/internal/registry"
	"notifyScope/internal/server"
	"notifyScope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "notifier",
		Short:        "Solana dapp event notification hub",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the notifier",
		RunE:  runNotifier,
	}

	runCmd.Flags().String("rpc", "", "Solana RPC URL")
	runCmd.Flags().String("ws", "", "Solana websocket URL")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("listen", ":10000", "HTTP listen address")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runNotifier(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	chainClient, err := chain.Connect(ctx, cfg.RPCEndpoint, cfg.WSEndpoint, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	endpoints := make([]model.ProgramEndpoint, 0, len(cfg.Programs))
	for _, p := range cfg.Programs {
		endpoints = append(endpoints, model.ProgramEndpoint{
			Name:    p.Name,
			Address: p.Address,
			Events:  chain.DeclaredEvents(p.Name),
		})
	}

	wsHub := hub.New(logger)
	proc := processor.New(store, store, store, chainClient, wsHub, logger)
	reg := registry.New(ctx, chainSubscriber{chainClient}, endpoints, proc, logger)
	wsHub.BindLifecycle(reg)

	srv := server.New(cfg.ListenAddr, wsHub, logger)

	logger.Info("notifier start",
		zap.String("rpc", cfg.RPCEndpoint),
		zap.String("ws", cfg.WSEndpoint),
		zap.String("listen", cfg.ListenAddr),
		zap.Int("programs", len(endpoints)),
	)

	return srv.Run(ctx)
}

// chainSubscriber narrows the chain client to the registry's Subscriber
// interface.
type chainSubscriber struct {
	client *chain.Client
}

func (s chainSubscriber) SubscribeEvent(
	ctx context.Context,
	programAddress string,
	spec model.EventSpec,
	handler func(model.RawEvent),
) (registry.Handle, error) {
	sub, err := s.client.SubscribeEvent(ctx, programAddress, spec, handler)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
