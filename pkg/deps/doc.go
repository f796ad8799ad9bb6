// Package deps resolves the dependency closure of a package into an
// install plan.
//
// # Overview
//
// [Resolver.Resolve] walks dependencies depth-first from the requested
// package. Each dependency expression ("glibc", "python>=3.11", "sh") is
// handled in this order:
//
//  1. A node already selected for the name, or providing it, is reused, so
//     a package needed by several dependents appears once
//  2. A node still being resolved means a cycle; resolution fails with a
//     [errors.CycleError] whose path starts and ends with the same name
//  3. An installed package that satisfies the expression is recorded in
//     [Plan.Satisfied] and not descended into (never for the root)
//  4. Otherwise candidates are looked up in every origin and one record is
//     selected by the origin policy below
//
// A selected node's runtime dependencies are resolved first, then, for AUR
// recipes, its build dependencies (makedepends and checkdepends). The node
// is appended to the plan once all of them are resolved, so [Plan.Steps]
// always lists dependencies before dependents.
//
// # Origin Policy
//
// One origin is chosen per name and the choice never depends on timing:
//
//   - A pin ([Options.RootOrigin] for the request, [Options.Pins] for any
//     name) restricts the choice to that origin; no record there is a
//     NOT_FOUND error
//   - Otherwise [Options.Prefer] (repo by default) is tried first, and the
//     other origin only when the preferred one has no acceptable record
//   - Within an origin, a record named exactly as requested beats providers,
//     then names sort
//
// # Constraints
//
// Constraints on a name are collected across the whole graph. Two that
// cannot hold together, or a selected version outside them, fail with a
// [errors.ConflictError] listing each constraint and who declared it.
//
// # Options
//
// [Options] controls resolution behavior:
//
//   - MaxDepth: Maximum dependency depth (default 50)
//   - MaxNodes: Maximum packages in the graph (default 5000)
//   - Prefer, RootOrigin, Pins: origin policy
//   - Logger: debug output
//
// [errors.CycleError]: github.com/matzehuels/aurorus/pkg/errors.CycleError
// [errors.ConflictError]: github.com/matzehuels/aurorus/pkg/errors.ConflictError
package deps
