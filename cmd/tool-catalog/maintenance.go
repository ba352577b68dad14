package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashwinyue/tool-catalog/internal/seed"
	"github.com/ashwinyue/tool-catalog/internal/service/auth"
)

func newSeedCmd(opts *cliOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import tools from a YAML seed file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report := seed.Run(cmd.Context(), a.services.Tool, f, a.log)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d, failed %d\n",
				report.Created, report.Skipped, len(report.Failed))
			if len(report.Failed) > 0 {
				return errors.New("some tools failed to import")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "seed file")
	return cmd
}

func newCategoriesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Recompute category tool counts from tool membership",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := a.services.Category.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", c.Slug, c.ToolCount)
			}
			return nil
		},
	})
	return cmd
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search index maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Write every tool into the Elasticsearch index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.services.Indexer.Enabled() {
				return errors.New("elastic.host is not configured")
			}
			a.services.Bootstrap(cmd.Context())
			n, err := a.services.Tool.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d tools\n", n)
			return nil
		},
	})
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for auth.adminPasswordHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
