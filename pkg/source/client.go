package source

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	aerr "github.com/matzehuels/aurorus/pkg/errors"
)

// LookupResult holds the candidates every reachable origin returned for a
// name, plus the origins that could not be queried.
type LookupResult struct {
	Name        string
	Records     []Record
	Unavailable []*aerr.SourceError
}

// ByOrigin returns the records from origin o.
func (r *LookupResult) ByOrigin(o Origin) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Origin == o {
			out = append(out, rec)
		}
	}
	return out
}

// Partial reports whether some origin failed.
func (r *LookupResult) Partial() bool { return len(r.Unavailable) > 0 }

// Warnings returns the origin failures as plain errors.
func (r *LookupResult) Warnings() []error { return asErrors(r.Unavailable) }

func asErrors(list []*aerr.SourceError) []error {
	out := make([]error, len(list))
	for i, e := range list {
		out[i] = e
	}
	return out
}

func joinSourceErrors(list []*aerr.SourceError) error {
	return errors.Join(asErrors(list)...)
}

// SearchResult holds merged search hits.
type SearchResult struct {
	Results     []Result
	Unavailable []*aerr.SourceError
}

// Client fans lookups out to all adapters and merges the answers.
//
// Adapter order is origin priority: records and search hits from earlier
// adapters come first.
type Client struct {
	adapters []Adapter
	logger   *log.Logger
}

// NewClient creates a Client over adapters. A nil logger discards output.
func NewClient(logger *log.Logger, adapters ...Adapter) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{adapters: adapters, logger: logger}
}

// Origins lists the configured origins in priority order.
func (c *Client) Origins() []Origin {
	out := make([]Origin, len(c.adapters))
	for i, a := range c.adapters {
		out[i] = a.Origin()
	}
	return out
}

// Lookup queries every origin concurrently and waits for all of them.
//
// It fails with a NOT_FOUND error when every origin answered and none knows
// name, and with SOURCE_UNAVAILABLE when nothing was found but at least one
// origin could not be asked. When some records were found, origin failures
// are reported in the result instead.
func (c *Client) Lookup(ctx context.Context, name string) (*LookupResult, error) {
	if err := aerr.ValidatePackageName(name); err != nil {
		return nil, err
	}

	records := make([][]Record, len(c.adapters))
	failures := make([]error, len(c.adapters))

	start := time.Now()
	var g errgroup.Group
	for i, a := range c.adapters {
		g.Go(func() error {
			records[i], failures[i] = a.Lookup(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &LookupResult{Name: name}
	for i, a := range c.adapters {
		if failures[i] != nil {
			se := &aerr.SourceError{Origin: string(a.Origin()), Name: name, Err: failures[i]}
			res.Unavailable = append(res.Unavailable, se)
			c.logger.Warn("source unavailable", "origin", a.Origin(), "name", name, "err", failures[i])
			continue
		}
		batch := append([]Record(nil), records[i]...)
		sort.SliceStable(batch, func(x, y int) bool { return batch[x].Name < batch[y].Name })
		res.Records = append(res.Records, batch...)
	}
	c.logger.Debug("lookup", "name", name, "records", len(res.Records), "failed", len(res.Unavailable), "elapsed", time.Since(start))

	if len(res.Records) == 0 {
		if len(res.Unavailable) > 0 {
			return res, aerr.Wrap(aerr.ErrCodeSourceUnavailable, joinSourceErrors(res.Unavailable),
				"cannot look up %s", name)
		}
		return res, aerr.New(aerr.ErrCodeNotFound, "package %s not found", name)
	}
	return res, nil
}

// Search queries every origin concurrently. It fails only when no origin
// could be searched.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	if query == "" {
		return nil, aerr.New(aerr.ErrCodeInvalidInput, "search query cannot be empty")
	}

	hits := make([][]Result, len(c.adapters))
	failures := make([]error, len(c.adapters))

	var g errgroup.Group
	for i, a := range c.adapters {
		g.Go(func() error {
			hits[i], failures[i] = a.Search(ctx, query)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &SearchResult{}
	for i, a := range c.adapters {
		if failures[i] != nil {
			res.Unavailable = append(res.Unavailable, &aerr.SourceError{Origin: string(a.Origin()), Name: query, Err: failures[i]})
			continue
		}
		res.Results = append(res.Results, hits[i]...)
	}
	if len(c.adapters) > 0 && len(res.Unavailable) == len(c.adapters) {
		return res, aerr.Wrap(aerr.ErrCodeSourceUnavailable, joinSourceErrors(res.Unavailable),
			"cannot search for %q", query)
	}
	return res, nil
}
