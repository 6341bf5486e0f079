package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"commentarchive/internal/formatter"
)

func exportCmd(opts *globalOptions) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print an article and its comments as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			cat, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			article, ok := cat.At(index)
			if !ok {
				return fmt.Errorf("article %d not found (archive has %d)", index, cat.Len())
			}

			md, err := formatter.NewExporter().Export(article)
			if err != nil {
				return fmt.Errorf("export article %d: %w", index, err)
			}

			fmt.Fprint(cmd.OutOrStdout(), md)

			return nil
		},
	}

	cmd.Flags().IntVarP(&index, "article", "a", 0, "Article index in catalog order")

	return cmd
}
