package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kqs-apply/internal/domain"

	"github.com/spf13/cobra"
)

func newPositionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List open positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions := domain.OpenPositions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(positions)
			}
			printPositions(cmd.OutOrStdout(), positions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the positions as JSON")
	return cmd
}

func printPositions(w io.Writer, positions []domain.Position) {
	for i, p := range positions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", p.Title)
		fmt.Fprintf(w, "  %s | %s | %s\n", p.Type, p.Location, p.Department)
		fmt.Fprintf(w, "  %s\n", p.Description)
		if len(p.Requirements) > 0 {
			fmt.Fprintf(w, "  Requirements:\n    - %s\n", strings.Join(p.Requirements, "\n    - "))
		}
	}
}
