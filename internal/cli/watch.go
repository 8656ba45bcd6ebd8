package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/rivebrain/internal/loader"
	"github.com/rcliao/rivebrain/internal/logging"
	"github.com/rcliao/rivebrain/internal/model"
	"github.com/rcliao/rivebrain/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild and snapshot a directory whenever it changes",
		Long:  "Watch a document directory. Every change rebuilds the brain from scratch and saves a new snapshot. Runs until interrupted.",
		Args:  cobra.ExactArgs(1),
		Run:   runWatch,
	}

	cmd.Flags().String("source", "", "Snapshot source label (default: the directory's base name)")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a rebuild (default: watch.debounce from config)")

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	dir := args[0]
	source, _ := cmd.Flags().GetString("source")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	if source == "" {
		source = filepath.Base(dir)
	}
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func() (*model.Brain, error) {
		return loader.Build(buildParams(dir, logging.NewReporter(logger)))
	}
	save := func(brain *model.Brain, err error) {
		if err != nil {
			logger.Error("rebuild failed, keeping previous snapshot", zap.String("dir", dir), zap.Error(err))
			return
		}
		snap, err := s.Save(context.WithoutCancel(ctx), store.SaveParams{Source: source, Brain: brain})
		if err != nil {
			logger.Error("save snapshot", zap.Error(err))
			return
		}
		logger.Info("snapshot saved",
			zap.String("id", snap.ID),
			zap.Int("topics", snap.Counts.Topics),
			zap.Int("triggers", snap.Counts.Triggers))
	}

	// Initial snapshot so the store reflects the directory before any edit.
	save(build())

	w, err := loader.NewWatcher(dir, debounce, build, save, logger)
	if err != nil {
		exitErr("watch", err)
	}
	w.Start(ctx)
	logger.Info("watching", zap.String("dir", dir), zap.Duration("debounce", debounce))

	<-ctx.Done()
	w.Stop()
	logger.Info("stopped", zap.Int("reloads", w.Reloads()))
}
