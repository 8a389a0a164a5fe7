package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/pydigger/pkg/buildinfo"
)

const httpTimeout = 30 * time.Second

// UserAgent identifies pydigger to package indexes.
var UserAgent = buildinfo.UserAgent()

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the index.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body cannot be decoded.
	ErrDecode = errors.New("decode error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for index requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
