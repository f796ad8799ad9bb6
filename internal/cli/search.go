package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/source"
)

func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit    int
		pickOne  bool
		aurOnly  bool
		repoOnly bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the AUR and the binary repositories",
		Long: `Search package names and descriptions in the AUR and in the configured binary
repositories. AUR results are sorted by votes. Installed packages are marked.

With --pick an interactive list opens; the chosen package is installed from
the origin it was listed under.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spinner := c.spin(ctx, fmt.Sprintf("Searching for %q...", args[0]))
			res, err := e.source.Search(ctx, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}
			for _, u := range res.Unavailable {
				printWarning("%s", u.Error())
			}

			results := filterResults(res.Results, aurOnly, repoOnly)
			for i := range results {
				if !results[i].Installed {
					results[i].Installed, _ = e.registry.Has(ctx, results[i].Name)
				}
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			if len(results) == 0 {
				printInfo("No packages match %q", args[0])
				return nil
			}

			if !pickOne {
				fmt.Println(searchView(results))
				printDetail("%d results", len(results))
				return nil
			}

			chosen, err := pick(results)
			if err != nil || chosen == nil {
				return err
			}
			opts := c.resolveOptions(e)
			opts.RootOrigin = chosen.Origin
			return c.install(ctx, e, chosen.Name, opts, false)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&pickOne, "pick", false, "choose a result interactively and install it")
	cmd.Flags().BoolVar(&aurOnly, "aur", false, "only show AUR results")
	cmd.Flags().BoolVar(&repoOnly, "repo", false, "only show binary repository results")
	cmd.MarkFlagsMutuallyExclusive("aur", "repo")

	return cmd
}

func filterResults(results []source.Result, aurOnly, repoOnly bool) []source.Result {
	if !aurOnly && !repoOnly {
		return results
	}
	want := source.OriginAUR
	if repoOnly {
		want = source.OriginRepo
	}
	var out []source.Result
	for _, r := range results {
		if r.Origin == want {
			out = append(out, r)
		}
	}
	return out
}
