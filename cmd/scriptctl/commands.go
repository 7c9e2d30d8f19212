package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Balaji0706816/nurseproject/internal/content"
	"github.com/Balaji0706816/nurseproject/internal/models"
	"github.com/Balaji0706816/nurseproject/internal/selector"
)

// snapshotFlags are shared by select and classify.
type snapshotFlags struct {
	domain    string
	day       int
	distress  float64
	missed    bool
	endOfWeek bool
}

func (f *snapshotFlags) register(cmd *cobra.Command, withSelection bool) {
	cmd.Flags().Float64Var(&f.distress, "distress", models.DefaultDistressScore, "distress score on the 0-10 scale")
	cmd.Flags().BoolVar(&f.missed, "missed", false, "participant missed the previous day")
	cmd.Flags().BoolVar(&f.endOfWeek, "end-of-week", false, "today closes a program week")
	if withSelection {
		cmd.Flags().StringVar(&f.domain, "domain", "", "content domain, e.g. Diet")
		cmd.Flags().IntVar(&f.day, "day", 1, "study day")
		_ = cmd.MarkFlagRequired("domain")
	}
}

func (f *snapshotFlags) snapshot() models.ParticipantSnapshot {
	return models.ParticipantSnapshot{
		Domain:        f.domain,
		Day:           f.day,
		DistressScore: f.distress,
		MissedDay:     f.missed,
		EndOfWeek:     f.endOfWeek,
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "scriptctl",
		Short:         "Inspect nurse-coach script libraries",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newValidateCmd(), newSelectCmd(), newClassifyCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Load a library and report every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			lib, err := content.LoadFile(args[0])
			var loadErr *content.LoadError
			if errors.As(err, &loadErr) {
				for _, issue := range loadErr.Issues {
					fmt.Fprintln(out, issue.String())
				}
				return fmt.Errorf("%s: %d issue(s) found", args[0], len(loadErr.Issues))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ok: %s: %d rows, domains: %s\n", lib.Source(), lib.Len(), strings.Join(lib.Domains(), ", "))
			return nil
		},
	}
}

func newSelectCmd() *cobra.Command {
	var (
		libraryPath string
		flags       snapshotFlags
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the category, pass and row chosen for a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(libraryPath)
			if err != nil {
				return err
			}
			result := selector.SelectContent(flags.snapshot(), lib)
			return writeYAML(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&libraryPath, "library", "", "YAML or JSON library (default: embedded library)")
	flags.register(cmd, true)
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var flags snapshotFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the conversation category for a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), selector.Classify(flags.snapshot()))
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func openLibrary(path string) (*content.Library, error) {
	if path == "" {
		return content.Default()
	}
	return content.LoadFile(path)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
