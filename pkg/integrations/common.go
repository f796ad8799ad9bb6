package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/aurorus/pkg/buildinfo"
)

// httpTimeout bounds a single AUR request including reading the body.
const httpTimeout = 15 * time.Second

// UserAgent identifies aurorus to the AUR.
var UserAgent = buildinfo.UserAgent()

var (
	// ErrNotFound is returned when the AUR answers 404 for a package or a
	// package base's .SRCINFO.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures (timeouts, connection
	// errors, 5xx responses) and for local tools that cannot be queried.
	// The source client turns it into a SourceError for the origin.
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient returns an HTTP client with the request timeout applied.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
