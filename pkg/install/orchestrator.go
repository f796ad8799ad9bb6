// Package install executes install and removal plans against the system.
//
// An [Orchestrator] walks a plan step by step while holding the registry
// lock. Steps run to completion once started; cancellation is observed
// between steps, and the remaining steps are reported as not run. The first
// failing step halts the run. Nothing is rolled back: packages installed by
// earlier steps stay installed and recorded.
package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/aurorus/pkg/command"
	"github.com/matzehuels/aurorus/pkg/deps"
	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/observability"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/removal"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/version"
)

// Builder turns an AUR recipe into installable package files.
type Builder interface {
	// Build builds rec inside workdir and returns the paths of the package
	// files to install.
	Build(ctx context.Context, rec *source.Record, workdir string) ([]string, error)
}

// Installer changes the system package set.
type Installer interface {
	InstallBinary(ctx context.Context, name string, explicit bool) error
	InstallArtifacts(ctx context.Context, paths []string, explicit bool) error
	// Remove uninstalls name. nodeps skips pacman's dependency checks.
	Remove(ctx context.Context, name string, nodeps bool) error
}

// Registry is the installed-package store the orchestrator updates.
type Registry interface {
	Lock(ctx context.Context) (func(), error)
	Get(ctx context.Context, name string) (*registry.Package, error)
	Put(ctx context.Context, pkg *registry.Package) error
	Delete(ctx context.Context, name string) error
	SetExplicit(ctx context.Context, name string, explicit bool) error
	Dependents(ctx context.Context, name string) ([]string, error)
}

// Orchestrator runs plans.
type Orchestrator struct {
	registry  Registry
	builder   Builder
	installer Installer
	buildDir  string
	logger    *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBuildDir sets the parent of per-build work directories (default: the
// system temp dir).
func WithBuildDir(dir string) Option {
	return func(o *Orchestrator) { o.buildDir = dir }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(reg Registry, builder Builder, installer Installer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:  reg,
		builder:   builder,
		installer: installer,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute installs plan.Steps in order.
//
// The returned report always covers every step. On failure the error is
// also returned: BUILD_FAILED or INSTALL_FAILED for a failed step (carrying
// the tool output), the context error on cancellation, REGISTRY_LOCKED when
// the lock cannot be taken.
func (o *Orchestrator) Execute(ctx context.Context, plan *deps.Plan) (*Report, error) {
	report := newReport(KindInstall)
	hooks := observability.Execution()
	hooks.OnRunStart(ctx, report.RunID, string(report.Kind), len(plan.Steps))
	logger := o.logger.With("run", report.RunID[:8])

	err := o.run(ctx, report, len(plan.Steps), func(i int) string { return plan.Steps[i].Name() },
		func(stepCtx context.Context, i int) Outcome {
			n := plan.Steps[i]
			hooks.OnStepStart(ctx, report.RunID, n.Name(), string(n.Origin()))
			start := time.Now()
			out, err := o.installStep(stepCtx, logger, plan, n)
			out.Duration = time.Since(start)
			hooks.OnStepComplete(ctx, report.RunID, n.Name(), string(out.Status), out.Duration, err)
			if err != nil {
				report.Err = err
			}
			return out
		})

	hooks.OnRunComplete(ctx, report.RunID, string(report.Kind), time.Since(report.Started), err)
	return report.finish(err), err
}

// Remove removes the packages of a removal plan in order.
func (o *Orchestrator) Remove(ctx context.Context, plan *removal.Plan) (*Report, error) {
	report := newReport(KindRemove)
	hooks := observability.Execution()
	hooks.OnRunStart(ctx, report.RunID, string(report.Kind), len(plan.Steps))
	logger := o.logger.With("run", report.RunID[:8])

	err := o.run(ctx, report, len(plan.Steps), func(i int) string { return plan.Steps[i].Name },
		func(stepCtx context.Context, i int) Outcome {
			step := plan.Steps[i]
			hooks.OnStepStart(ctx, report.RunID, step.Name, "")
			start := time.Now()
			out, err := o.removeStep(stepCtx, logger, plan, step)
			out.Duration = time.Since(start)
			hooks.OnStepComplete(ctx, report.RunID, step.Name, string(out.Status), out.Duration, err)
			if err != nil {
				report.Err = err
			}
			return out
		})

	hooks.OnRunComplete(ctx, report.RunID, string(report.Kind), time.Since(report.Started), err)
	return report.finish(err), err
}

// run holds the registry lock and drives steps, halting on the first failure
// and between steps on cancellation.
func (o *Orchestrator) run(ctx context.Context, report *Report, total int, name func(int) string, step func(context.Context, int) Outcome) error {
	notRun := func(from int, reason string) {
		for i := from; i < total; i++ {
			report.Outcomes = append(report.Outcomes, Outcome{Name: name(i), Status: StatusNotRun, Reason: reason})
		}
	}

	unlock, err := o.registry.Lock(ctx)
	if err != nil {
		notRun(0, "registry locked")
		return err
	}
	defer unlock()

	// Started steps finish even if ctx is cancelled meanwhile.
	stepCtx := context.WithoutCancel(ctx)

	for i := range total {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("run cancelled", "remaining", total-i)
			notRun(i, "cancelled")
			return err
		}
		out := step(stepCtx, i)
		report.Outcomes = append(report.Outcomes, out)
		if out.Status == StatusFailed {
			notRun(i+1, "halted after "+out.Name+" failed")
			return report.Err
		}
	}
	return nil
}

func (o *Orchestrator) installStep(ctx context.Context, logger *log.Logger, plan *deps.Plan, n *deps.Node) (Outcome, error) {
	out := Outcome{Name: n.Name(), Origin: n.Origin(), Version: n.Version()}

	installed, ok, err := o.compatible(ctx, n)
	if err != nil {
		out.Status, out.Reason = StatusFailed, err.Error()
		return out, aerr.Wrap(aerr.ErrCodeInternal, err, "cannot check installed state of %s", n.Name())
	}
	if ok {
		out.Status = StatusSkipped
		out.Reason = "installed " + installed.Version
		if n.Explicit && !installed.Explicit {
			if err := o.registry.SetExplicit(ctx, installed.Name, true); err != nil {
				logger.Warn("failed to mark explicit", "name", installed.Name, "err", err)
			}
		}
		logger.Info("skipped", "name", n.Name(), "installed", installed.Version)
		return out, nil
	}

	// An upgrade pulled in as a dependency keeps an earlier explicit install.
	explicit := n.Explicit || (installed != nil && installed.Explicit)

	logger.Info("installing", "name", n.Name(), "origin", n.Origin(), "version", n.Version())
	switch n.Origin() {
	case source.OriginRepo:
		err = o.installer.InstallBinary(ctx, n.Name(), explicit)
		if err != nil {
			err = stepError(n.Name(), aerr.ErrCodeInstallFailed, err)
		}
	default:
		err = o.buildAndInstall(ctx, n, explicit)
	}
	if err != nil {
		out.Status, out.Reason = StatusFailed, aerr.UserMessage(err)
		logger.Error("step failed", "name", n.Name(), "err", err)
		return out, err
	}

	pkg := &registry.Package{
		Name:         n.Name(),
		Version:      n.Version(),
		Origin:       string(n.Origin()),
		Dependencies: plan.Graph.ResolvedDependencies(n),
		Provides:     provideStrings(n.Record.Provides),
		Explicit:     explicit,
	}
	if err := o.registry.Put(ctx, pkg); err != nil {
		out.Status, out.Reason = StatusFailed, err.Error()
		return out, aerr.Wrap(aerr.ErrCodeInternal, err, "%s installed but not recorded", n.Name())
	}

	out.Status = StatusInstalled
	logger.Info("installed", "name", n.Name(), "version", n.Version())
	return out, nil
}

// compatible reports whether n's package is already installed at a version
// every constraint on n accepts.
func (o *Orchestrator) compatible(ctx context.Context, n *deps.Node) (*registry.Package, bool, error) {
	pkg, err := o.registry.Get(ctx, n.Name())
	if aerr.Is(err, aerr.ErrCodeNotInstalled) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	provides := version.ParseDependencies(pkg.Provides)
	for _, c := range n.Constraints {
		d, err := version.ParseDependency(c.Expr)
		if err != nil {
			continue
		}
		if !version.Satisfies(d, pkg.Name, pkg.Version, provides) {
			return pkg, false, nil
		}
	}
	return pkg, true, nil
}

// buildAndInstall builds an AUR recipe in a fresh work directory, removed
// when it returns, and installs the result.
func (o *Orchestrator) buildAndInstall(ctx context.Context, n *deps.Node, explicit bool) error {
	if o.buildDir != "" {
		if err := os.MkdirAll(o.buildDir, 0o755); err != nil {
			return stepError(n.Name(), aerr.ErrCodeBuildFailed, fmt.Errorf("failed to create build dir: %w", err))
		}
	}
	workdir, err := os.MkdirTemp(o.buildDir, "aurorus-"+n.Name()+"-")
	if err != nil {
		return stepError(n.Name(), aerr.ErrCodeBuildFailed, fmt.Errorf("failed to create workdir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workdir); err != nil {
			o.logger.Warn("failed to remove workdir", "dir", workdir, "err", err)
		}
	}()

	artifacts, err := o.builder.Build(ctx, n.Record, workdir)
	if err != nil {
		return stepError(n.Name(), aerr.ErrCodeBuildFailed, err)
	}
	if err := o.installer.InstallArtifacts(ctx, artifacts, explicit); err != nil {
		return stepError(n.Name(), aerr.ErrCodeInstallFailed, err)
	}
	return nil
}

// removeStep removes one package. Dependents are checked again under the
// registry lock: a package installed since planning that needs step.Name
// fails the step, unless this is the forced removal of the target.
func (o *Orchestrator) removeStep(ctx context.Context, logger *log.Logger, plan *removal.Plan, step removal.Step) (Outcome, error) {
	out := Outcome{Name: step.Name, Reason: string(step.Reason)}
	if pkg, err := o.registry.Get(ctx, step.Name); err == nil {
		out.Origin = source.Origin(pkg.Origin)
		out.Version = pkg.Version
	}

	forced := plan.Forced && step.Reason == removal.ReasonTarget
	if !forced {
		dependents, err := o.registry.Dependents(ctx, step.Name)
		if err != nil {
			out.Status, out.Reason = StatusFailed, err.Error()
			return out, aerr.Wrap(aerr.ErrCodeInternal, err, "cannot check dependents of %s", step.Name)
		}
		if len(dependents) > 0 {
			err := &aerr.InUseError{Name: step.Name, Dependents: dependents}
			out.Status, out.Reason = StatusFailed, err.Error()
			logger.Error("step failed", "name", step.Name, "err", err)
			return out, err
		}
	}

	logger.Info("removing", "name", step.Name, "reason", step.Reason, "nodeps", forced)
	if err := o.installer.Remove(ctx, step.Name, forced); err != nil {
		if !strings.Contains(command.Output(err), targetNotFound) {
			err = stepError(step.Name, aerr.ErrCodeRemoveFailed, err)
			out.Status, out.Reason = StatusFailed, aerr.UserMessage(err)
			logger.Error("step failed", "name", step.Name, "err", err)
			return out, err
		}
		logger.Warn("not installed on the system, dropping record", "name", step.Name)
		out.Reason = "not installed on the system"
	}
	if err := o.registry.Delete(ctx, step.Name); err != nil && !aerr.Is(err, aerr.ErrCodeNotInstalled) {
		out.Status, out.Reason = StatusFailed, err.Error()
		return out, aerr.Wrap(aerr.ErrCodeInternal, err, "%s removed but still recorded", step.Name)
	}

	out.Status = StatusRemoved
	logger.Info("removed", "name", step.Name)
	return out, nil
}

// targetNotFound is pacman's message for a package that is not installed.
const targetNotFound = "target not found"

func stepError(name string, op aerr.Code, err error) *aerr.StepError {
	return &aerr.StepError{Name: name, Op: op, Output: command.Output(err), Err: err}
}

func provideStrings(list []version.Dependency) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.String()
	}
	return out
}
