package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/recipe"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Append recipes from a JSON, YAML or TOML file",
		Long: `Append recipes from a file. The format is taken from the file extension
unless --format is given. Recipes without an id, or whose id is already
in use, get a fresh one. Nothing is imported if any recipe is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := formatFlag(cmd, path)
			if err != nil {
				return err
			}
			rs, err := recipe.LoadFile(path, format)
			if err != nil {
				return err
			}
			added, err := a.book.Import(cmd.Context(), rs)
			if err := a.warnPersist(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d recipes from %s.\n", len(added), path)
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "", "json, yaml or toml (default: from extension)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every recipe as JSON, YAML or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, err := formatFlag(cmd, out)
			if err != nil {
				return err
			}

			var w io.Writer = a.out
			var bw *bufio.Writer
			if out != "" && out != "-" {
				f, err := os.Create(out) // #nosec G304 -- path comes from the command line
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() { _ = f.Close() }()
				bw = bufio.NewWriter(f)
				w = bw
			}

			rs := a.book.Recipes()
			if err := recipe.Write(w, format, rs); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if bw != nil {
				if err := bw.Flush(); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
			}
			a.log.Info("exported %d recipes as %s", len(rs), format)
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "", "json, yaml or toml (default: from --out extension, else json)")
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	return cmd
}

// formatFlag reads --format, falling back to path's extension and then
// to JSON when there is no path.
func formatFlag(cmd *cobra.Command, path string) (recipe.Format, error) {
	if s, _ := cmd.Flags().GetString("format"); s != "" {
		return recipe.ParseFormat(s)
	}
	if path == "" || path == "-" {
		return recipe.FormatJSON, nil
	}
	return recipe.FormatFromPath(path)
}
