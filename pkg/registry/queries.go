package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
	"github.com/matzehuels/aurorus/pkg/version"
)

// Package operations

// Put inserts or replaces a package together with its dependency and
// provides sets in one transaction.
func (r *Registry) Put(ctx context.Context, pkg *Package) error {
	if pkg.InstalledAt.IsZero() {
		pkg.InstalledAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO packages (name, version, origin, explicit, installed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			origin = excluded.origin,
			explicit = excluded.explicit,
			installed_at = excluded.installed_at
	`, pkg.Name, pkg.Version, pkg.Origin, pkg.Explicit, pkg.InstalledAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert package %s: %w", pkg.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear dependencies of %s: %w", pkg.Name, err)
	}
	for _, dep := range pkg.Dependencies {
		if dep == pkg.Name {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (package, depends_on) VALUES (?, ?)
		`, pkg.Name, dep); err != nil {
			return fmt.Errorf("failed to insert dependency %s -> %s: %w", pkg.Name, dep, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM provides WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear provides of %s: %w", pkg.Name, err)
	}
	for _, expr := range pkg.Provides {
		d, err := version.ParseDependency(expr)
		if err != nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO provides (package, expr, name) VALUES (?, ?, ?)
		`, pkg.Name, expr, d.Name); err != nil {
			return fmt.Errorf("failed to insert provides %s for %s: %w", expr, pkg.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", pkg.Name, err)
	}
	return nil
}

// Get retrieves a package by name. A missing package yields an error with
// code NOT_INSTALLED.
func (r *Registry) Get(ctx context.Context, name string) (*Package, error) {
	var pkg Package
	var installedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT name, version, origin, explicit, installed_at
		FROM packages
		WHERE name = ?
	`, name).Scan(&pkg.Name, &pkg.Version, &pkg.Origin, &pkg.Explicit, &installedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, aerr.New(aerr.ErrCodeNotInstalled, "package %s is not installed", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", name, err)
	}
	if pkg.InstalledAt, err = time.Parse(time.RFC3339, installedAt); err != nil {
		return nil, fmt.Errorf("failed to parse installed_at for %s: %w", name, err)
	}

	if pkg.Dependencies, err = r.strings(ctx, `SELECT depends_on FROM dependencies WHERE package = ? ORDER BY depends_on`, name); err != nil {
		return nil, err
	}
	if pkg.Provides, err = r.strings(ctx, `SELECT expr FROM provides WHERE package = ? ORDER BY expr`, name); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Has reports whether name is installed.
func (r *Registry) Has(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check package %s: %w", name, err)
	}
	return n > 0, nil
}

// List returns all packages ordered by name.
func (r *Registry) List(ctx context.Context) ([]*Package, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, version, origin, explicit, installed_at
		FROM packages
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	var packages []*Package
	byName := map[string]*Package{}
	for rows.Next() {
		var pkg Package
		var installedAt string
		if err := rows.Scan(&pkg.Name, &pkg.Version, &pkg.Origin, &pkg.Explicit, &installedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		if pkg.InstalledAt, err = time.Parse(time.RFC3339, installedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse installed_at for %s: %w", pkg.Name, err)
		}
		packages = append(packages, &pkg)
		byName[pkg.Name] = &pkg
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}
	rows.Close()

	if err := r.pairs(ctx, `SELECT package, depends_on FROM dependencies ORDER BY package, depends_on`, func(pkg, dep string) {
		if p := byName[pkg]; p != nil {
			p.Dependencies = append(p.Dependencies, dep)
		}
	}); err != nil {
		return nil, err
	}
	if err := r.pairs(ctx, `SELECT package, expr FROM provides ORDER BY package, expr`, func(pkg, expr string) {
		if p := byName[pkg]; p != nil {
			p.Provides = append(p.Provides, expr)
		}
	}); err != nil {
		return nil, err
	}
	return packages, nil
}

// Delete removes a package and its outgoing dependency edges. Edges from
// other packages to it are kept, so a forced removal stays visible.
func (r *Registry) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete package %s: %w", name, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return aerr.New(aerr.ErrCodeNotInstalled, "package %s is not installed", name)
	}
	return nil
}

// SetExplicit changes the install reason of a package.
func (r *Registry) SetExplicit(ctx context.Context, name string, explicit bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE packages SET explicit = ? WHERE name = ?`, explicit, name)
	if err != nil {
		return fmt.Errorf("failed to update package %s: %w", name, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return aerr.New(aerr.ErrCodeNotInstalled, "package %s is not installed", name)
	}
	return nil
}

// Dependency operations

// Dependents returns the installed packages whose recorded dependencies
// include name, ordered by name.
func (r *Registry) Dependents(ctx context.Context, name string) ([]string, error) {
	return r.strings(ctx, `
		SELECT d.package
		FROM dependencies d
		JOIN packages p ON p.name = d.package
		WHERE d.depends_on = ?
		ORDER BY d.package
	`, name)
}

// Satisfier returns an installed package that satisfies dep, by name or
// through its provides. It returns nil, nil when none does. An exact name
// match is preferred; among providers the first by name wins.
func (r *Registry) Satisfier(ctx context.Context, dep version.Dependency) (*Package, error) {
	pkg, err := r.Get(ctx, dep.Name)
	switch {
	case err == nil:
		provides := version.ParseDependencies(pkg.Provides)
		if version.Satisfies(dep, pkg.Name, pkg.Version, provides) {
			return pkg, nil
		}
	case !aerr.Is(err, aerr.ErrCodeNotInstalled):
		return nil, err
	}

	names, err := r.strings(ctx, `SELECT DISTINCT package FROM provides WHERE name = ? ORDER BY package`, dep.Name)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		p, err := r.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		if version.Satisfies(dep, p.Name, p.Version, version.ParseDependencies(p.Provides)) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *Registry) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("registry query failed: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (r *Registry) pairs(ctx context.Context, query string, fn func(a, b string)) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("registry query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		fn(a, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}
