package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagostin/hagl-demo/pkg/demo"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print the demo sequence",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printDemos(os.Stdout)
	},
}

func printDemos(w io.Writer) {
	for _, k := range demo.All() {
		fmt.Fprintf(w, "%2d  %s\n", int(k), k)
	}
}
