package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kreosurvey/internal/bootstrap"
	"kreosurvey/internal/platform/config"
	uiapp "kreosurvey/internal/ui/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir string
	remote  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "kreosurvey",
		Short:         "Kreo Ultimate Gamer Survey",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", ".", "directory holding kreosurvey.yaml and local state")
	root.PersistentFlags().StringVar(&flags.remote, "remote", "", "gRPC address of a kreosurvey serve instance (default: local store)")

	root.AddCommand(newTakeCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newResetCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newAdminCmd(flags))
	return root
}

func loadApp(flags *globalFlags, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if flags.remote != "" {
		cfg.RemoteAddr = flags.remote
	}
	return bootstrap.New(cfg, opts)
}

func withApp(flags *globalFlags, opts bootstrap.Options, run func(app *bootstrap.App) error) error {
	app, err := loadApp(flags, opts)
	if err != nil {
		return err
	}
	runErr := run(app)
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func newTakeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Take the survey in the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, bootstrap.RunSurveyTUI)
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved survey progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				out, err := app.SurveyCLI.Status(context.Background())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(w, out)
				}
				if out.SessionID == "" {
					_, _ = fmt.Fprintln(w, "no survey started")
					return nil
				}
				state := "in progress"
				if out.Completed {
					state = "completed"
				}
				_, _ = fmt.Fprintf(w, "session %s: %s, %d%% answered, at %s\n", out.SessionID, state, out.CompletionPercentage, out.CurrentSection)
				if len(out.AnsweredSections) > 0 {
					_, _ = fmt.Fprintf(w, "answered: %s\n", strings.Join(out.AnsweredSections, ", "))
				}
				if out.Remote != nil {
					_, _ = fmt.Fprintf(w, "remote: %s, %d%%, updated %s\n", out.Remote.CompletionStatus, out.Remote.CompletionPercentage, out.Remote.LastUpdated.Local().Format(time.RFC3339))
				} else {
					_, _ = fmt.Fprintln(w, "remote: not saved yet")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newResetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard local answers and start a fresh session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				if err := app.SurveyCLI.Reset(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "survey reset")
				return nil
			})
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the response store (gRPC) and admin API (HTTP)",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(flags, bootstrap.Options{LogToStderr: true}, func(app *bootstrap.App) error {
				return app.Serve(ctx)
			})
		},
	}
}

func newAdminCmd(flags *globalFlags) *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Review collected responses"}

	admin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List responses, most recently updated first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				records, err := app.ResponsesCLI.List(context.Background())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(records) == 0 {
					_, _ = fmt.Fprintln(w, "no responses")
					return nil
				}
				for _, r := range records {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\n",
						r.ID,
						r.UserInfo.CompletionStatus,
						r.UserInfo.CompletionPercentage,
						r.UserInfo.CurrentSection,
						r.UserInfo.LastUpdated.Local().Format(time.RFC3339),
					)
				}
				return nil
			})
		},
	})

	var showID string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print one response document as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				record, err := app.ResponsesCLI.Show(context.Background(), showID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), record)
			})
		},
	}
	showCmd.Flags().StringVar(&showID, "id", "", "response id")
	_ = showCmd.MarkFlagRequired("id")

	var deleteID string
	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete response %s? [y/N] ", deleteID)) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				if err := app.ResponsesCLI.Delete(context.Background(), deleteID); err != nil {
					return fmt.Errorf("failed to delete response: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", deleteID)
				return nil
			})
		},
	}
	deleteCmd.Flags().StringVar(&deleteID, "id", "", "response id")
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	_ = deleteCmd.MarkFlagRequired("id")

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export every response as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				ctx := context.Background()
				if outPath == "-" {
					_, err := app.ResponsesCLI.Export(ctx, cmd.OutOrStdout())
					return err
				}
				path := outPath
				if path == "" {
					path = uiapp.ExportFileName(time.Now())
				}
				out, err := app.ResponsesCLI.ExportFile(ctx, path)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d responses (%d columns) to %s\n", out.Records, out.Columns, path)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file, - for stdout (default kreo-survey-responses-DATE.csv)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize completion across responses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				stats, err := app.ResponsesCLI.Stats(context.Background())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "total=%d completed=%d in_progress=%d average=%.1f%%\n", stats.Total, stats.Completed, stats.InProgress, stats.AveragePercentage)
				sections := make([]string, 0, len(stats.SectionCounts))
				for section := range stats.SectionCounts {
					sections = append(sections, section)
				}
				sort.Strings(sections)
				for _, section := range sections {
					_, _ = fmt.Fprintf(w, "  %s: %d\n", section, stats.SectionCounts[section])
				}
				return nil
			})
		},
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse responses in the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.Options{}, bootstrap.RunDashboard)
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for an admin account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			return withApp(flags, bootstrap.Options{}, func(app *bootstrap.App) error {
				hash, err := app.AdminCLI.HashPassword(context.Background(), password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			})
		},
	}

	admin.AddCommand(showCmd, deleteCmd, exportCmd, statsCmd, dashboardCmd, hashCmd)
	return admin
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
