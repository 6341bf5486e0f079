package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"commentarchive/pkg/metadata"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Verify the signature of a built document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			meta, err := metadata.Verify(string(content))
			if err != nil {
				return fmt.Errorf("verify %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (version %s, %d articles, %d comments, signed %s)\n",
				args[0], meta.Version, meta.Articles, meta.Comments, meta.LastModify.Format("2006-01-02 15:04:05"))

			return nil
		},
	}
}
