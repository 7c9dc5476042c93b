package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytfile-go/api/handlers"
	"github.com/yourusername/ytfile-go/internal/domain"
)

var submitCmd = &cobra.Command{
	Use:   "submit [url]",
	Short: "Start a download on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		mode, _ := cmd.Flags().GetString("mode")
		output, _ := cmd.Flags().GetString("output")
		follow, _ := cmd.Flags().GetBool("follow")

		client := newAPIClient(serverURL)
		req, err := client.Submit(handlers.SubmitRequest{URL: args[0], SaveDir: output, Mode: mode})
		if errors.Is(err, errBusy) {
			fmt.Fprintln(os.Stderr, "A download is already in progress. Try again when it finishes.")
			return errBusy
		}
		if err != nil {
			return err
		}

		fmt.Printf("Download started: %s (%s) -> %s\n", req.URL, req.Mode.Label(), req.SaveDir)
		if !follow {
			return nil
		}
		return followAttempt(client)
	},
}

// followAttempt renders server events until the attempt finishes
func followAttempt(client *apiClient) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	view := newTerminalView(os.Stdout, false)
	var outcome *domain.Event
	err := client.Follow(ctx, func(msg handlers.EventMessage) bool {
		if msg.Event == nil {
			// initial snapshot; the attempt may already be over
			if !msg.State.Busy && msg.State.LastOutcome != nil {
				done := domain.Event{Type: domain.EventDone, Outcome: msg.State.LastOutcome}
				view.OnEvent(done, msg.State)
				outcome = &done
				return false
			}
			return true
		}
		view.OnEvent(*msg.Event, msg.State)
		if msg.Event.IsDone() {
			outcome = msg.Event
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if outcome != nil && !outcome.Succeeded() {
		return errDownloadFailed
	}
	return nil
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show what the server is doing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		state, err := newAPIClient(serverURL).State()
		if err != nil {
			return err
		}

		fmt.Printf("Status: %s\n", state.Status)
		if state.Request != nil {
			fmt.Printf("URL:    %s\n", state.Request.URL)
			fmt.Printf("Mode:   %s\n", state.Request.Mode.Label())
		}
		if state.StatusLine != "" {
			fmt.Printf("Progress: %s\n", state.StatusLine)
		}
		if n := len(state.Logs); n > 0 {
			fmt.Println("Recent log:")
			for _, line := range state.Logs[max(0, n-10):] {
				fmt.Printf("  %s\n", line)
			}
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [url]",
	Short: "Show title, channel and duration without downloading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		info, err := newAPIClient(serverURL).Info(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Title:    %s\n", info.Title)
		fmt.Printf("Channel:  %s\n", info.Channel)
		fmt.Printf("Duration: %s\n", info.DurationText)
		if info.ThumbnailURL != "" {
			fmt.Printf("Thumb:    %s\n", info.ThumbnailURL)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		limit, _ := cmd.Flags().GetInt("limit")
		records, err := newAPIClient(serverURL).History(limit)
		if err != nil {
			return err
		}
		printHistory(records)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		deleteFile, _ := cmd.Flags().GetBool("delete-file")
		if err := newAPIClient(serverURL).DeleteHistory(args[0], deleteFile); err != nil {
			return err
		}
		fmt.Println("History entry deleted")
		return nil
	},
}

func printHistory(records []*domain.DownloadRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tMODE\tSTATUS\tFILE")
	for _, r := range records {
		name := r.Filename
		if r.Status == domain.RecordFailed {
			name = truncate(r.ErrorMessage, 40)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(r.ID, 8),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Mode,
			r.Status,
			name)
	}
	w.Flush()
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "View attempt, error or engine logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		category := "attempt"
		if len(args) == 1 {
			category = args[0]
		}
		date, _ := cmd.Flags().GetString("date")
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		entries, err := newAPIClient(serverURL).Logs(category, date, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s %-5s %s\n", e.Timestamp, e.Level, e.Message)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringP("mode", "m", "", "Output mode (video, audio)")
	submitCmd.Flags().StringP("output", "o", "", "Save folder (default from server config)")
	submitCmd.Flags().BoolP("follow", "f", false, "Show progress until the download finishes")

	historyCmd.Flags().IntP("limit", "n", 0, "Number of entries (default from server config)")
	historyDeleteCmd.Flags().Bool("delete-file", false, "Also delete the downloaded file")
	historyCmd.AddCommand(historyDeleteCmd)

	logsCmd.Flags().String("date", "", "Log date (YYYY-MM-DD, default today)")
	logsCmd.Flags().IntP("limit", "n", 100, "Number of entries")
	logsCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
}
