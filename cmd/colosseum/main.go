package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boristopalov/colosseum/pkg/arena"
	"github.com/boristopalov/colosseum/pkg/config"
	"github.com/boristopalov/colosseum/pkg/game"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "colosseum",
		Short:         "Colosseum pits two language models against each other in Street Fighter III.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	episodesCmd := &cobra.Command{
		Use:   "episodes <dataset-path>",
		Short: "List the episodes recorded under a dataset path",
		Args:  cobra.ExactArgs(1),
		RunE:  listEpisodes,
	}

	for _, envFile := range []string{
		".env",
		"../../.env",
		"../../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(newRunCmd(), episodesCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one match between two players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runMatch(cmd *cobra.Command, flags *runFlags) error {
	cfg, err := flags.config(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	g, err := game.New(ctx, *cfg, game.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to set up match: %w", err)
	}
	p1, p2 := g.Players()
	logger.Info("players ready",
		zap.String("player_1", p1.Nickname),
		zap.String("player_2", p2.Nickname),
		zap.Strings("characters", cfg.Characters[:]),
	)

	res, err := g.Run(ctx)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	winner := "draw"
	switch {
	case res.Reward[arena.Agent0] > res.Reward[arena.Agent1]:
		winner = p1.Nickname
	case res.Reward[arena.Agent1] > res.Reward[arena.Agent0]:
		winner = p2.Nickname
	}
	fmt.Fprintf(cmd.OutOrStdout(), "match over after %d steps (terminated=%t truncated=%t), last exchange won by %s\n",
		res.Steps, res.Terminated, res.Truncated, winner)
	if rs := g.Session().Recording; rs != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "recorded to %s\n", rs.DatasetPath)
	}
	return nil
}

func listEpisodes(cmd *cobra.Command, args []string) error {
	episodes, err := arena.LoadEpisodes(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, ep := range episodes {
		seed := "-"
		if ep.Seed != nil {
			seed = fmt.Sprint(*ep.Seed)
		}
		fmt.Fprintf(out, "%s  %s  %s vs %s  outfits %d/%d  seed %s  steps %d  terminated=%t truncated=%t\n",
			ep.ID, ep.StartedAt.Format("2006-01-02 15:04:05"),
			ep.Characters[0], ep.Characters[1], ep.Outfits[0], ep.Outfits[1],
			seed, ep.Steps, ep.Terminated, ep.Truncated)
	}
	return nil
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if lc.JSON {
		zc = zap.NewProductionConfig()
	}
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}
