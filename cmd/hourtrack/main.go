package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/P-ict0/HourTrack/internal/config"
	"github.com/P-ict0/HourTrack/internal/domain"
	"github.com/P-ict0/HourTrack/internal/format"
	"github.com/P-ict0/HourTrack/internal/journal"
	"github.com/P-ict0/HourTrack/internal/store"
	"github.com/P-ict0/HourTrack/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "hourtrack",
	Short: "Track time spent on projects",
	Long: `HourTrack tracks elapsed time against named projects.
Start a session when you begin working, stop it when you are done, and
render totals in several formats (smart, full, short, hours). State
lives in a single JSON registry under the data directory; every
mutation is also journaled and visible with 'hourtrack log'.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("HOURTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default ~/.hourtrack)")
	rootCmd.PersistentFlags().StringP("format", "f", "smart",
		fmt.Sprintf("output format (%s)", strings.Join(format.Modes, ", ")))
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
}

func registerCommands() {
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(stopCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(renameCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(logCmd())
}

// env is everything an executing command needs: the tracker bound to
// the resolved data dir and the effective output format.
type env struct {
	Tracker tracker.Tracker
	Mode    format.Mode
}

func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e env) error) error {
	dir := viper.GetString("data-dir")
	if dir == "" {
		var err error
		dir, err = store.DefaultDir()
		if err != nil {
			return err
		}
	}
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return err
	}
	mode, err := resolveMode(cmd, cfg)
	if err != nil {
		return err
	}
	var st *store.Store
	if cfg != nil && cfg.DataFile != "" {
		st, err = store.OpenFile(cfg.DataFile)
	} else {
		st, err = store.Open(dir)
	}
	if err != nil {
		return err
	}
	j, err := journal.Open(dir)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(cmd.Context(), env{Tracker: tracker.New(st, j), Mode: mode})
}

// resolveMode applies precedence: --format flag, then HOURTRACK_FORMAT,
// then the config file, then smart.
func resolveMode(cmd *cobra.Command, cfg *config.Config) (format.Mode, error) {
	name := viper.GetString("format")
	flagSet := cmd.Flags().Changed("format")
	envSet := os.Getenv("HOURTRACK_FORMAT") != ""
	if !flagSet && !envSet && cfg != nil && cfg.Format != "" {
		name = cfg.Format
	}
	return format.Parse(name)
}

func createCmd() *cobra.Command {
	var goal float64
	cmd := &cobra.Command{
		Use:   "create <project>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if err := e.Tracker.Create(ctx, args[0], goal); err != nil {
					return err
				}
				fmt.Printf("Created project: %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&goal, "goal", 0, "target hours (0 for no goal)")
	return cmd
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <project>",
		Short: "Start tracking time for a project",
		Long:  "Opens an active session for the project, creating the project first if it does not exist.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if _, err := e.Tracker.Start(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Started tracking project: %s\n", args[0])
				return nil
			})
		},
	}
	return cmd
}

func stopCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "stop [project]",
		Short: "Stop tracking time for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if all {
					stopped, err := e.Tracker.StopAll(ctx)
					if err != nil {
						return err
					}
					if len(stopped) == 0 {
						fmt.Println("No active sessions")
						return nil
					}
					for _, name := range stopped {
						fmt.Printf("Stopped tracking project: %s\n", name)
					}
					return nil
				}
				if len(args) != 1 {
					return fmt.Errorf("project name or --all required")
				}
				sess, err := e.Tracker.Stop(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Stopped tracking project: %s (%s)\n", args[0], format.Duration(sess.Duration(), e.Mode))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "stop every active session")
	return cmd
}

func resetCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset [project]",
		Short: "Clear a project's sessions, keeping the project and its goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if all {
					names, err := e.Tracker.ResetAll(ctx)
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Printf("Reset project: %s\n", name)
					}
					return nil
				}
				if len(args) != 1 {
					return fmt.Errorf("project name or --all required")
				}
				if err := e.Tracker.Reset(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Reset project: %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "reset every project")
	return cmd
}

func renameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if err := e.Tracker.Rename(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Renamed project: %s -> %s\n", args[0], args[1])
				return nil
			})
		},
	}
	return cmd
}

func editCmd() *cobra.Command {
	var goal, addHours float64
	var deleteIndex int
	cmd := &cobra.Command{
		Use:   "edit <project>",
		Short: "Edit a project's goal or sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			goalSet := cmd.Flags().Changed("goal")
			addSet := cmd.Flags().Changed("add-session")
			delSet := cmd.Flags().Changed("delete-session")
			changed := 0
			for _, set := range []bool{goalSet, addSet, delSet} {
				if set {
					changed++
				}
			}
			if changed != 1 {
				return fmt.Errorf("exactly one of --goal, --add-session, --delete-session required")
			}
			return withEnv(cmd, func(ctx context.Context, e env) error {
				switch {
				case goalSet:
					if err := e.Tracker.SetGoal(ctx, name, goal); err != nil {
						return err
					}
					if goal == 0 {
						fmt.Printf("Cleared goal for project: %s\n", name)
					} else {
						fmt.Printf("Set goal for project %s: %.1f hours\n", name, goal)
					}
				case addSet:
					sess, err := e.Tracker.AddSession(ctx, name, addHours)
					if err != nil {
						return err
					}
					fmt.Printf("Added session to project %s: %s\n", name, format.Duration(sess.Duration(), e.Mode))
				case delSet:
					sess, err := e.Tracker.DeleteSession(ctx, name, deleteIndex)
					if err != nil {
						return err
					}
					fmt.Printf("Deleted session from project %s: %s\n", name, format.Duration(sess.Duration(), e.Mode))
				}
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&goal, "goal", 0, "set target hours (0 clears)")
	cmd.Flags().Float64Var(&addHours, "add-session", 0, "append a completed session of this many hours ending now")
	cmd.Flags().IntVar(&deleteIndex, "delete-session", 0, "remove the session at this 1-based index (-1 for last)")
	return cmd
}

func deleteCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [project]",
		Short: "Delete a project and all its sessions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				if all {
					names, err := e.Tracker.DeleteAll(ctx)
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Printf("Deleted project: %s\n", name)
					}
					return nil
				}
				if len(args) != 1 {
					return fmt.Errorf("project name or --all required")
				}
				if err := e.Tracker.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted project: %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every project")
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list [all|active]",
		Short:     "List projects and their totals",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all", "active"},
		RunE: func(cmd *cobra.Command, args []string) error {
			activeOnly := len(args) == 1 && args[0] == "active"
			return withEnv(cmd, func(ctx context.Context, e env) error {
				statuses, err := e.Tracker.List(ctx, activeOnly)
				if err != nil {
					return err
				}
				renderList(os.Stdout, statuses, e.Mode)
				return nil
			})
		},
	}
	return cmd
}

func infoCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info [project]",
		Short: "Show a project report, or the status of all active sessions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				var w io.Writer = os.Stdout
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if len(args) == 0 {
					statuses, err := e.Tracker.List(ctx, true)
					if err != nil {
						return err
					}
					renderActive(w, statuses, e.Mode)
				} else {
					st, sessions, err := e.Tracker.Info(ctx, args[0])
					if err != nil {
						return err
					}
					renderReport(w, st, sessions, e.Mode)
				}
				if output != "" {
					fmt.Printf("Wrote report to %s\n", output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func logCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent registry changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e env) error {
				events, err := e.Tracker.Journal.Latest(ctx, n)
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Project", "Detail"})
				for _, evt := range events {
					tw.AppendRow(table.Row{evt.TS, evt.Type, evt.Project, evt.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

// --- rendering ---

func renderList(w io.Writer, statuses []tracker.Status, mode format.Mode) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Project", "Status", "Sessions", "Total", "Goal"})
	for _, st := range statuses {
		tw.AppendRow(table.Row{st.Name, statusWord(st), st.Sessions, format.Duration(st.Total, mode), goalCell(st)})
	}
	tw.Render()
}

func renderActive(w io.Writer, statuses []tracker.Status, mode format.Mode) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No active sessions")
		return
	}
	for _, st := range statuses {
		fmt.Fprintf(w, "%s: active for %s (since %s)\n",
			st.Name, format.Duration(st.Total, mode), format.Timestamp(st.Since))
	}
}

func renderReport(w io.Writer, st tracker.Status, sessions []domain.Session, mode format.Mode) {
	if mode == format.Hours {
		fmt.Fprintln(w, format.Duration(st.Total, mode))
		return
	}
	fmt.Fprintf(w, "Project: %s\n", st.Name)
	fmt.Fprintf(w, "Status: %s\n", statusWord(st))
	fmt.Fprintf(w, "Sessions: %d\n", st.Sessions)
	fmt.Fprintf(w, "Total: %s\n", format.Duration(st.Total, mode))
	if st.Goal > 0 {
		fmt.Fprintf(w, "Goal: %s\n", goalCell(st))
	}
	if mode == format.Full && len(sessions) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.AppendHeader(table.Row{"#", "Start", "End", "Duration"})
		for i, sess := range sessions {
			tw.AppendRow(table.Row{i + 1,
				format.Timestamp(sess.Start),
				format.Timestamp(sess.End),
				format.Duration(sess.Duration(), mode)})
		}
		tw.Render()
	}
}

func statusWord(st tracker.Status) string {
	if st.Active {
		return fmt.Sprintf("active since %s", format.Timestamp(st.Since))
	}
	return "idle"
}

func goalCell(st tracker.Status) string {
	if st.Goal <= 0 {
		return "-"
	}
	pct := st.Total.Hours() / st.Goal * 100
	return fmt.Sprintf("%.1f%% of %.1fh", pct, st.Goal)
}
