// Package cli implements the aurorus command-line interface.
//
// Each subcommand performs one core operation: search, install, uninstall,
// plan, update, sync, graph. Commands share a [CLI] holding the logger and
// global flags; the collaborators a command needs (config, cache, AUR and
// pacman clients, registry, resolver, orchestrator) are built per run by
// [CLI.open].
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/buildinfo"
)

const appName = "aurorus"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "aurorus installs packages from the AUR and the binary repositories",
		Long: `aurorus searches, installs and uninstalls packages from the Arch User Repository and
the system's binary repositories. Dependencies are resolved across both origins, built
with makepkg where needed, and tracked so uninstalling removes what a package orphans.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/aurorus/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the metadata cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached metadata and refetch")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
