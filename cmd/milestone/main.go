// Command milestone runs the milestone notification dispatcher.
//
// Usage:
//
//	milestone dispatch
//	milestone dispatch --dry-run --at 2025-03-04T09:00:00Z
//	milestone real-test-email --email alex@example.com
//	milestone test-email --to qa@example.com --focus-days 14
//	milestone invoke --event '{"real_test_email": true, "email": "alex@example.com"}'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/app"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/config"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/invoke"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/logging"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/notifications"
)

var logger = slog.Default()

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var closer io.Closer
	logger, closer = logging.New(logging.OptionsFromEnv())
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:          "milestone",
		Short:        "Milestone notification dispatcher",
		SilenceUsage: true,
	}

	root.AddCommand(dispatchCmd())
	root.AddCommand(realTestEmailCmd())
	root.AddCommand(testEmailCmd())
	root.AddCommand(invokeCmd())

	err := root.Execute()
	closer.Close()
	if err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// dispatch command
// --------------------------------------------------------------------------

func dispatchCmd() *cobra.Command {
	var (
		dryRun bool
		at     string
	)
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one hourly dispatch over all subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			runInstant, err := parseAt(at)
			if err != nil {
				return err
			}
			return runApp(app.Options{DryRun: dryRun}, func(ctx context.Context, a *app.App) error {
				if !dryRun {
					if err := a.Config.ValidateMessaging(); err != nil {
						return err
					}
					if err := a.Config.ValidateEmail(); err != nil {
						return err
					}
				}

				report, err := a.Dispatcher.RunAt(ctx, runInstant)
				if err != nil {
					return fmt.Errorf("dispatch: %w", err)
				}
				logger.Info("Dispatch finished", "summary", report.Summary())

				if a.Config.PushgatewayURL != "" {
					if err := a.Metrics.Push(a.Config.PushgatewayURL); err != nil {
						logger.Warn("Metrics push failed", "error", err)
					}
				}
				return printJSON(report)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate and compose without calling any gateway")
	cmd.Flags().StringVar(&at, "at", "", "Run instant (RFC3339), defaults to now")
	return cmd
}

// --------------------------------------------------------------------------
// test email commands
// --------------------------------------------------------------------------

func realTestEmailCmd() *cobra.Command {
	var address, at string
	cmd := &cobra.Command{
		Use:   "real-test-email",
		Short: "Send the composed milestone email to one real subscriber",
		RunE: func(cmd *cobra.Command, args []string) error {
			runInstant, err := parseAt(at)
			if err != nil {
				return err
			}
			return runApp(app.Options{}, func(ctx context.Context, a *app.App) error {
				res, err := a.Dispatcher.SendRealTestEmail(ctx, address, runInstant)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
	cmd.Flags().StringVar(&address, "email", "", "Subscriber email address")
	cmd.Flags().StringVar(&at, "at", "", "Run instant (RFC3339), defaults to now")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func testEmailCmd() *cobra.Command {
	var to string
	data := invoke.TestEmailData(nil)
	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send one milestone email with literal display fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if data.FirstName == "" {
				data.FirstName = notifications.FirstName(to)
			}
			return runApp(app.Options{}, func(ctx context.Context, a *app.App) error {
				id, err := a.Dispatcher.SendTestEmail(ctx, to, data)
				if err != nil {
					return err
				}
				return printJSON(map[string]string{"message_id": id})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&to, "to", "", "Recipient address")
	f.StringVar(&data.FirstName, "first-name", "", "First name (derived from --to when empty)")
	f.IntVar(&data.FocusDays, "focus-days", data.FocusDays, "Days in focus")
	f.StringVar(&data.CurrentLevel, "current-level", data.CurrentLevel, "Current level title")
	f.StringVar(&data.CurrentEmoji, "current-emoji", data.CurrentEmoji, "Current level emoji")
	f.StringVar(&data.NextLevel, "next-level", data.NextLevel, "Next level title")
	f.StringVar(&data.NextEmoji, "next-emoji", data.NextEmoji, "Next level emoji")
	f.IntVar(&data.DaysToNext, "days-to-next", data.DaysToNext, "Days to next level")
	f.StringVar(&data.KingQueen, "king-queen", data.KingQueen, "Final rank title")
	f.IntVar(&data.DaysToKingQueen, "days-to-king-queen", data.DaysToKingQueen, "Days to final rank")
	f.Float64Var(&data.Percentile, "percentile", data.Percentile, "Percentile")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// --------------------------------------------------------------------------
// invoke command
// --------------------------------------------------------------------------

func invokeCmd() *cobra.Command {
	var event, eventFile string
	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Handle one invocation event and print the JSON response",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(event)
			if eventFile != "" {
				b, err := os.ReadFile(eventFile)
				if err != nil {
					return fmt.Errorf("read event file: %w", err)
				}
				raw = b
			}
			var ev map[string]any
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &ev); err != nil {
					return fmt.Errorf("parse event: %w", err)
				}
			}
			return runApp(app.Options{}, func(ctx context.Context, a *app.App) error {
				resp := invoke.NewHandler(a.Dispatcher, logger).Handle(ctx, ev)
				if err := printJSON(resp); err != nil {
					return err
				}
				if resp.Error != "" {
					return fmt.Errorf("invocation failed: %s", resp.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&event, "event", "", "Event JSON")
	cmd.Flags().StringVar(&eventFile, "event-file", "", "Path to an event JSON file")
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// runApp loads config, assembles the app and runs fn with a signal-aware context.
func runApp(opts app.Options, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		logger.Error("Command failed", "error", err)
		return err
	}
	return nil
}

func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339: %w", err)
	}
	return t.UTC(), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
