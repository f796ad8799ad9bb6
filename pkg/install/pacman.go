package install

import (
	"context"

	"github.com/matzehuels/aurorus/pkg/command"
)

// PacmanInstaller installs and removes packages with pacman.
type PacmanInstaller struct {
	runner command.Runner
	Pacman string // pacman binary (default "pacman")
	Sudo   string // privilege command prefix, empty to run pacman directly
}

// NewPacmanInstaller creates an installer. When sudo is true pacman runs
// through sudo.
func NewPacmanInstaller(runner command.Runner, sudo bool) *PacmanInstaller {
	p := &PacmanInstaller{runner: runner, Pacman: "pacman"}
	if sudo {
		p.Sudo = "sudo"
	}
	return p
}

// InstallBinary installs a repository package.
func (p *PacmanInstaller) InstallBinary(ctx context.Context, name string, explicit bool) error {
	return p.run(ctx, "-S", "--noconfirm", "--needed", reasonFlag(explicit), "--", name)
}

// InstallArtifacts installs locally built package files.
func (p *PacmanInstaller) InstallArtifacts(ctx context.Context, paths []string, explicit bool) error {
	args := append([]string{"-U", "--noconfirm", reasonFlag(explicit), "--"}, paths...)
	return p.run(ctx, args...)
}

// Remove uninstalls a package. With nodeps pacman skips its dependency
// checks (-dd), which a forced removal needs while dependents stay installed.
func (p *PacmanInstaller) Remove(ctx context.Context, name string, nodeps bool) error {
	args := []string{"-R", "--noconfirm"}
	if nodeps {
		args = append(args, "-dd")
	}
	return p.run(ctx, append(args, "--", name)...)
}

// SysUpgrade synchronizes the repositories and upgrades every repository
// package.
func (p *PacmanInstaller) SysUpgrade(ctx context.Context) error {
	return p.run(ctx, "-Syu", "--noconfirm")
}

func (p *PacmanInstaller) run(ctx context.Context, args ...string) error {
	cmd := command.Cmd{Name: p.Pacman, Args: args}
	if p.Sudo != "" {
		cmd = command.Cmd{Name: p.Sudo, Args: append([]string{p.Pacman}, args...)}
	}
	_, err := p.runner.Run(ctx, cmd)
	return err
}

func reasonFlag(explicit bool) string {
	if explicit {
		return "--asexplicit"
	}
	return "--asdeps"
}
