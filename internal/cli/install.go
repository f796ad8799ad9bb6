package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/deps"
	"github.com/matzehuels/aurorus/pkg/removal"
	"github.com/matzehuels/aurorus/pkg/source"
)

// resolveFlags are the resolution flags shared by install, plan and graph.
type resolveFlags struct {
	origin string
	pins   []string
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.origin, "origin", "", "take the requested package from this origin (repo or aur)")
	cmd.Flags().StringSliceVar(&f.pins, "pin", nil, "pin a dependency to an origin, as name=origin (repeatable)")
}

func (f *resolveFlags) apply(opts *deps.Options) error {
	if f.origin != "" {
		o, err := source.ParseOrigin(f.origin)
		if err != nil {
			return err
		}
		opts.RootOrigin = o
	}
	pins, err := parsePins(f.pins)
	if err != nil {
		return err
	}
	opts.Pins = pins
	return nil
}

// parsePins parses "name=origin" pairs.
func parsePins(list []string) (map[string]source.Origin, error) {
	if len(list) == 0 {
		return nil, nil
	}
	pins := make(map[string]source.Origin, len(list))
	for _, p := range list {
		name, origin, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid pin %q (want name=origin)", p)
		}
		o, err := source.ParseOrigin(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q: %w", p, err)
		}
		pins[name] = o
	}
	return pins, nil
}

func (c *CLI) installCommand() *cobra.Command {
	var (
		flags  resolveFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Install a package and its dependencies",
		Long: `Resolve the package and every missing dependency, then install them in
dependency order. Binary repository packages are installed with pacman; AUR
packages are cloned and built with makepkg first.

The package may carry a version constraint, e.g. "foo>=2.0".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			opts := c.resolveOptions(e)
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.install(ctx, e, args[0], opts, dryRun)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without installing")

	return cmd
}

func (c *CLI) planCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "plan <package>",
		Short: "Print the install plan for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			opts := c.resolveOptions(e)
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.install(ctx, e, args[0], opts, true)
		},
	}

	flags.register(cmd)
	return cmd
}

// install resolves target and, unless dryRun, executes the plan.
func (c *CLI) install(ctx context.Context, e *env, target string, opts deps.Options, dryRun bool) error {
	plan, err := c.resolve(ctx, e, target, opts)
	if err != nil {
		return err
	}
	fmt.Println(planView(plan))
	if dryRun {
		printNextStep("Install with", appName+" install "+target)
		return nil
	}

	report, err := c.orchestrator(e).Execute(ctx, plan)
	fmt.Println(reportView(report))
	if err != nil {
		return err
	}
	printSuccess("Installed %s", StyleHighlight.Render(plan.Root().Name()))
	return nil
}

func (c *CLI) resolve(ctx context.Context, e *env, target string, opts deps.Options) (*deps.Plan, error) {
	prog := newProgress(c.Logger)
	spinner := c.spin(ctx, fmt.Sprintf("Resolving %s...", target))
	plan, err := e.resolver().Resolve(ctx, target, opts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("Resolved", "packages", plan.Graph.Len(), "target", target)
	return plan, nil
}

func (c *CLI) uninstallCommand() *cobra.Command {
	var (
		force  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "uninstall <package>",
		Aliases: []string{"remove"},
		Short:   "Uninstall a package and the dependencies it orphans",
		Long: `Remove a package together with every dependency that nothing else needs and
that was not installed explicitly. A matching "<name>-debug" package is removed too.

Uninstalling fails when other installed packages still depend on the target,
unless --force is given. Dependents are never removed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeInstalled,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			plan, err := c.planner(e).Plan(ctx, args[0], removal.Options{Force: force})
			if err != nil {
				return err
			}
			fmt.Println(removalView(plan))
			if dryRun {
				printNextStep("Uninstall with", appName+" uninstall "+args[0])
				return nil
			}

			report, err := c.orchestrator(e).Remove(ctx, plan)
			fmt.Println(reportView(report))
			if err != nil {
				return err
			}
			printSuccess("Uninstalled %s", StyleHighlight.Render(plan.Target))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "remove even if other packages depend on it")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the removal plan without removing")

	return cmd
}
