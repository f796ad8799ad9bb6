package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/render"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  resolveFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph <package>",
		Short: "Render the resolved dependency graph of a package",
		Long: `Resolve a package as install would and render its dependency graph. AUR
packages are filled, installed packages that satisfy a dependency are dashed.

Formats: dot (default, printed to stdout), svg, png.`,
		Example: `  aurorus graph yay
  aurorus graph yay -f svg -o yay.svg
  aurorus graph yay | dot -Tpdf > yay.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f != render.FormatDOT && output == "" {
				return fmt.Errorf("--output is required for %s", f)
			}

			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			opts := c.resolveOptions(e)
			if err := flags.apply(&opts); err != nil {
				return err
			}
			plan, err := c.resolve(ctx, e, args[0], opts)
			if err != nil {
				return err
			}

			data, err := render.Render(ctx, plan.Graph.DOT(), f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %d packages", plan.Graph.Len())
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot)")

	return cmd
}
