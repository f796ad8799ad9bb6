// Package pkg provides the core libraries of aurorus, a package helper for
// the Arch User Repository and the system's binary repositories.
//
// # Overview
//
// aurorus resolves a requested package across two origins (AUR build
// recipes and prebuilt repository binaries), orders everything that is
// missing so dependencies come first, and drives git, makepkg and pacman
// through that order. An installed-package registry records what was
// installed and why, so uninstalling can also remove the dependencies a
// package orphans.
//
// # Architecture
//
// Install:
//
//	[source] (AUR RPC + pacman -Si, queried concurrently)
//	         ↓
//	    [deps] (dependency graph, origin policy, conflicts → Plan)
//	         ↓
//	    [install] (lock registry, build/install step by step → Report)
//	         ↓
//	    [registry] (record each installed package)
//
// Uninstall:
//
//	[registry] → [removal] (dependents check, orphan closure → Plan) → [install]
//
// # Main Packages
//
// [version] - pacman version comparison (epoch:pkgver-pkgrel), dependency
// expressions such as "glibc>=2.38" and range intersection for conflict
// checks.
//
// [source] - Origin adapters and the client that merges their answers.
// Partial failures are reported, never dropped.
//
// [integrations] - The shared HTTP client (cache + retry) and the origin
// clients: [integrations/aur] for the RPC and .SRCINFO, [integrations/pacman]
// for pacman queries.
//
// [deps] - The resolver. Produces an install [deps.Plan] or an error that
// explains why none exists (cycle path, conflicting constraints, missing
// package).
//
// [install] - The orchestrator and the makepkg/pacman drivers.
//
// [removal] - The removal planner.
//
// [registry] - SQLite store of installed packages with an exclusive
// cross-process lock.
//
// [update] - AUR upgrade checks.
//
// [render] - Graphviz rendering of resolved graphs.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis and null backends, plus retry
// helpers. [command] - External process runner. [config] - TOML settings.
// [errors] - Error codes and structured error types. [observability] - Hooks
// for runs, cache and HTTP traffic. [buildinfo] - Version stamped at link
// time.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/deps/...       # Specific package
//	go test -run Example ./...   # Examples only
//
// Tests need no network or pacman: origins are faked with httptest servers
// and command runners, the registry runs in memory.
//
// [version]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/version
// [source]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/source
// [integrations]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/integrations
// [integrations/aur]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/integrations/aur
// [integrations/pacman]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/integrations/pacman
// [deps]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/deps
// [deps.Plan]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/deps#Plan
// [install]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/install
// [removal]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/removal
// [registry]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/registry
// [update]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/update
// [render]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/cache
// [command]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/command
// [config]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/aurorus/pkg/buildinfo
package pkg
