package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errQuit ends an interactive session without an error.
var errQuit = errors.New("quit")

var rootCmd = &cobra.Command{
	Use:           "wavecore",
	Short:         "Play audio files from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newPlayCmd(), newResumeCmd(), newHistoryCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
