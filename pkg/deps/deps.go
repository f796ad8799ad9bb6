package deps

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/aurorus/pkg/source"
)

const (
	DefaultMaxDepth = 50   // Default maximum dependency depth
	DefaultMaxNodes = 5000 // Default maximum packages in one graph
)

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth int // Maximum depth to traverse (default: 50)
	MaxNodes int // Maximum nodes in the graph (default: 5000)

	// Prefer is the origin chosen when a name exists in several origins and
	// no pin applies (default: repo).
	Prefer source.Origin
	// RootOrigin pins the origin of the requested package (optional).
	RootOrigin source.Origin
	// Pins select the origin for individual dependency names.
	Pins map[string]source.Origin

	Logger *log.Logger // Progress output (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Prefer == "" {
		opts.Prefer = source.OriginRepo
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// pin returns the origin forced for name, if any.
func (o Options) pin(name string, root bool) (source.Origin, bool) {
	if root && o.RootOrigin != "" {
		return o.RootOrigin, true
	}
	if p, ok := o.Pins[name]; ok && p != "" {
		return p, true
	}
	return "", false
}
