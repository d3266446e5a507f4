package download

import (
	"context"

	"github.com/dlget/dlq/internal/fetch"
)

// Fetcher streams bytes for a source URL. The returned body is restartable
// from the start only; transport failures are reported as *fetch.TransportError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Response, error)
}

// Cleaner removes the partial output of a transfer that did not complete
type Cleaner interface {
	CleanupIncomplete(path string) bool
}
