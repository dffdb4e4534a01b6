package cmd

import (
	"fmt"
	"os"

	"clang-format-all/internal/config"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Flags are parsed by config.Parse rather than cobra
// because -I is greedy and -C swallows the rest of the line.
func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clang-format-all [flags]",
		Short: "Run clang-format on every C/C++ source file under a directory",
		Long: `clang-format-all walks a source directory, collects C and C++ sources and headers
(.cpp .cxx .c .h .hxx .hpp), drops the ones under ignored paths and formats the rest
in place with clang-format, one process per file, using every available CPU.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Status = app.Run(args)
			return nil
		},
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.ErrOut)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	env, err := config.ReadEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	app := &App{Out: os.Stdout, ErrOut: os.Stderr, Env: env}
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return int(app.Status)
}
