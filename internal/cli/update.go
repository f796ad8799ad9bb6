package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/command"
	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/update"
)

func (c *CLI) updateCommand() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "List AUR packages with newer versions available",
		Long: `Compare every installed AUR package against the AUR and list the ones with a
newer version. With --apply each one is rebuilt and reinstalled, keeping whether
it was installed explicitly or as a dependency, and then the binary repository
packages are upgraded with pacman -Syu.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			spinner := c.spin(ctx, "Checking AUR for updates...")
			res, err := update.NewChecker(e.aur, e.registry, c.Logger).Check(ctx, c.refresh)
			spinner.Stop()
			if err != nil {
				return err
			}

			for _, name := range res.Missing {
				printWarning("%s is no longer in the AUR", name)
			}
			if len(res.Updates) == 0 {
				printSuccess("All %d AUR packages are up to date", res.Checked)
			} else {
				fmt.Println(updatesView(res.Updates))
			}
			if !apply {
				if len(res.Updates) > 0 {
					printNextStep("Apply with", appName+" update --apply")
				}
				return nil
			}

			if len(res.Updates) > 0 {
				reports, err := update.Apply(ctx, res.Updates, e.resolver(), c.orchestrator(e), c.resolveOptions(e))
				for _, r := range reports {
					fmt.Println(reportView(r))
				}
				if err != nil {
					return err
				}
				printSuccess("Updated %d AUR packages", len(reports))
			}
			return c.sysUpgrade(ctx, e)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "rebuild outdated AUR packages, then run pacman -Syu")

	return cmd
}

// sysUpgrade runs pacman -Syu under the registry lock and records the new
// versions of the upgraded packages.
func (c *CLI) sysUpgrade(ctx context.Context, e *env) error {
	unlock, err := e.registry.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	printInfo("Upgrading repository packages")
	runner := command.NewExecRunner(os.Stderr, c.Logger)
	if err := c.installer(e, runner).SysUpgrade(ctx); err != nil {
		return &aerr.StepError{Name: "system", Op: aerr.ErrCodeInstallFailed, Output: command.Output(err), Err: err}
	}

	local, err := e.pacman.Local(ctx)
	if err != nil {
		return fmt.Errorf("read local versions: %w", err)
	}
	n, err := refreshVersions(ctx, e.registry, local)
	if err != nil {
		return err
	}
	printSuccess("System upgraded")
	printKeyValue("versions", fmt.Sprintf("%d updated in registry", n))
	return nil
}
