// Package integrations provides the low-level clients for package sources.
//
// # Overview
//
// Each source has its own subpackage:
//
//   - [aur]: the Arch User Repository RPC and cgit endpoints
//   - [pacman]: the binary repositories and local database, via pacman
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality: a namespaced
// [cache.Cache], retry with backoff for transient failures, and mapping of
// HTTP status codes to [ErrNotFound] and [ErrNetwork].
//
//	client := integrations.NewClient(backend, "aur:", time.Hour, nil)
//	var resp rpcResponse
//	err := client.Cached(ctx, key, false, &resp, func() error {
//	    return client.Get(ctx, url, &resp)
//	})
//
// [aur]: github.com/matzehuels/aurorus/pkg/integrations/aur
// [pacman]: github.com/matzehuels/aurorus/pkg/integrations/pacman
package integrations
