/*
tokenvmcli prepares keys, addresses and instruction data for the tokenvm
chain without talking to a node.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "tokenvmcli",
		Short:         "Offline helpers for the tokenvm chain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOutput(out)
	root.AddCommand(
		keygenCmd(out),
		addressCmd(out),
		encodeCmd(out),
	)
	return root
}
