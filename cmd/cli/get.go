package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/bootstrap"
	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

// errDownloadFailed makes the process exit non-zero after the failure was printed
var errDownloadFailed = errors.New("download failed")

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a video in this process, without the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		output, _ := cmd.Flags().GetString("output")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noHistory, _ := cmd.Flags().GetBool("no-history")
		return runLocalDownload(args[0], mode, output, verbose, !noHistory)
	},
}

func init() {
	getCmd.Flags().StringP("mode", "m", "video", "Output mode (video, audio)")
	getCmd.Flags().StringP("output", "o", "", "Save folder (default from config)")
	getCmd.Flags().BoolP("verbose", "v", false, "Print every engine message")
	getCmd.Flags().Bool("no-history", false, "Don't record the download in history")
}

func runLocalDownload(url, modeName, saveDir string, verbose, withHistory bool) error {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	mode, err := domain.ParseMode(modeName)
	if err != nil {
		return err
	}
	if saveDir == "" {
		saveDir = config.Download.SaveDir
	}

	log := zap.NewNop()
	if verbose {
		log = logger.NewDefault()
	}
	defer log.Sync()

	var multiLog *logger.MultiLogger
	if ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	}); err == nil {
		multiLog = ml
		defer multiLog.Close()
	} else {
		log.Warn("Category logs disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.Build(ctx, config, bootstrap.Options{WithHistory: withHistory}, multiLog, log)
	if err != nil {
		return err
	}
	defer services.Close()

	view := newTerminalView(os.Stdout, verbose)
	services.Presenter.Subscribe(view.OnEvent)

	// the loop keeps draining after ctx is cancelled so the cancellation is reported
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	if err := services.Presenter.Start(loopCtx); err != nil {
		return err
	}
	defer services.Presenter.Stop()

	req := domain.NewDownloadRequest(url, saveDir, mode)
	fmt.Printf("Downloading %s as %s to %s\n", req.URL, req.Mode.Label(), req.SaveDir)
	if !services.Presenter.Submit(req) {
		return errors.New("a download is already in progress")
	}

	ev := <-view.Done()
	if !ev.Succeeded() {
		return errDownloadFailed
	}
	if record := services.Presenter.Snapshot().LastRecord; record != nil && record.FilePath != "" {
		fmt.Printf("Saved: %s\n", record.FilePath)
	}
	return nil
}
