package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	indexPagePrefix = "index:page:%d"

	// IndexFragmentTTL bounds how stale the cached index feed may be.
	// Within the TTL the fragment may show posts that no longer exist;
	// that staleness is part of the contract.
	IndexFragmentTTL = 20 * time.Second
)

// IndexPageKey returns the fragment cache key for one page of the index feed.
func IndexPageKey(page int) string {
	return fmt.Sprintf(indexPagePrefix, page)
}

// InvalidateIndexPage drops the cached fragment for one index page. The
// next request for that page recomputes it from the store regardless of
// any remaining TTL.
func InvalidateIndexPage(ctx context.Context, page int) {
	Invalidate(ctx, IndexPageKey(page))
}
