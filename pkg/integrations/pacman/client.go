// Package pacman queries the system's binary repositories and local package
// database through the pacman command.
//
// Only read-only operations live here. Installing and removing packages is
// done by the install orchestrator.
package pacman

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/aurorus/pkg/command"
	"github.com/matzehuels/aurorus/pkg/integrations"
)

// Client runs pacman queries.
type Client struct {
	runner command.Runner
	bin    string
}

// NewClient creates a client that invokes bin (default "pacman") through runner.
func NewClient(runner command.Runner, bin string) *Client {
	if bin == "" {
		bin = "pacman"
	}
	return &Client{runner: runner, bin: bin}
}

// Info looks name up in the sync databases. When no package has that name,
// the provider pacman itself would pick is used instead. With the same
// package in several repositories, the first block wins (repository order).
func (c *Client) Info(ctx context.Context, name string) (*Package, error) {
	pkg, err := c.syncInfo(ctx, name)
	if !errors.Is(err, integrations.ErrNotFound) {
		return pkg, err
	}

	provider, perr := c.resolveProvider(ctx, name)
	if perr != nil {
		return nil, perr
	}
	if provider == "" || provider == name {
		return nil, err
	}
	return c.syncInfo(ctx, provider)
}

func (c *Client) syncInfo(ctx context.Context, name string) (*Package, error) {
	out, err := c.run(ctx, "-Si", "--", name)
	if err != nil {
		return nil, err
	}
	pkgs := ParseInfo(out)
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: repo package %s", integrations.ErrNotFound, name)
	}
	return &pkgs[0], nil
}

// resolveProvider asks pacman which package satisfies a virtual name.
func (c *Client) resolveProvider(ctx context.Context, name string) (string, error) {
	out, err := c.run(ctx, "-Sp", "--noconfirm", "--print-format", "%n", "--", name)
	if errors.Is(err, integrations.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, ":: ") {
			return line, nil
		}
	}
	return "", nil
}

// Search runs `pacman -Ss`. No matches is an empty result, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	out, err := c.run(ctx, "-Ss", "--", query)
	if err != nil {
		var cmdErr *command.Error
		if errors.As(err, &cmdErr) && cmdErr.ExitCode() == 1 && strings.TrimSpace(cmdErr.Output) == "" {
			return nil, nil
		}
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ParseSearch(out), nil
}

// Installed returns every package in the local database (`pacman -Qi`).
func (c *Client) Installed(ctx context.Context) ([]Package, error) {
	out, err := c.run(ctx, "-Qi")
	if err != nil {
		return nil, err
	}
	return ParseInfo(out), nil
}

// Local returns name to version for all installed packages (`pacman -Q`).
func (c *Client) Local(ctx context.Context) (map[string]string, error) {
	out, err := c.run(ctx, "-Q")
	if err != nil {
		return nil, err
	}
	return ParseQuery(out), nil
}

// Foreign returns installed packages not found in any sync database
// (`pacman -Qm`), which usually came from the AUR.
func (c *Client) Foreign(ctx context.Context) (map[string]string, error) {
	out, err := c.run(ctx, "-Qm")
	if err != nil {
		var cmdErr *command.Error
		if errors.As(err, &cmdErr) && cmdErr.ExitCode() == 1 && strings.TrimSpace(cmdErr.Output) == "" {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return ParseQuery(out), nil
}

// Explicit returns the names of explicitly installed packages (`pacman -Qeq`).
func (c *Client) Explicit(ctx context.Context) (map[string]bool, error) {
	out, err := c.run(ctx, "-Qeq")
	if err != nil {
		return nil, err
	}
	names := map[string]bool{}
	for name := range ParseQuery(out) {
		names[name] = true
	}
	return names, nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	out, err := c.runner.Run(ctx, command.Cmd{Name: c.bin, Args: args})
	if err != nil {
		return string(out), classify(err, string(out))
	}
	return string(out), nil
}

// classify maps pacman failures onto the integration error sentinels while
// keeping the command error in the chain.
func classify(err error, output string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	lower := strings.ToLower(output)
	if strings.Contains(lower, "was not found") || strings.Contains(lower, "target not found") {
		return fmt.Errorf("%w: %w", integrations.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", integrations.ErrNetwork, err)
}
