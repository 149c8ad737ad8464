// Package cli provides the orm-demo command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

// Flow names one of the demo runs.
type Flow string

const (
	FlowStudents    Flow = "students"
	FlowEnrollments Flow = "enrollments"
)

// RunFunc executes a flow and writes its report to out.
type RunFunc func(ctx context.Context, flow Flow, out io.Writer) error

// NewRootCmd creates the root command. Without a subcommand it runs the
// enrollments flow.
func NewRootCmd(run RunFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orm-demo",
		Short: "Provision, seed and query the students/courses demo database",
		Long: `orm-demo rebuilds a PostgreSQL database from scratch, loads a fixed set
of students and courses, and prints a few reports over them.

Connection settings come from DB_* environment variables or a .env file.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), FlowEnrollments, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(newFlowCommand(run, FlowStudents, "Single-table flow: students only"))
	rootCmd.AddCommand(newFlowCommand(run, FlowEnrollments, "Many-to-many flow: students, courses and enrollments"))

	return rootCmd
}

func newFlowCommand(run RunFunc, flow Flow, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(flow),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flow, cmd.OutOrStdout())
		},
	}
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd(Run)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
