package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	successExitCode = 0
	errorExitCode   = 1
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "hush: %v\n", err)
		return errorExitCode
	}
	return successExitCode
}

func newRootCommand() *cobra.Command {
	play := newPlayCommand()
	root := &cobra.Command{
		Use:   "hush [FREQUENCY [RADIUS]]",
		Short: "Mask a tone with notched noise",
		Long: `Hush plays a quiet tone at FREQUENCY and after the startup threshold
switches to white noise with a notch of RADIUS Hz around it.

Keys: up doubles loudness, down halves it, space, escape or ctrl-c quit.`,
		Args:          play.Args,
		RunE:          play.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addPlayFlags(root)
	root.AddCommand(
		play,
		newCheckCommand(),
		newDevicesCommand(),
	)
	return root
}
