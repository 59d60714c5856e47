package offline

import (
	"context"
	"net/http"
)

// Entry is one cached response.
type Entry struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// Store keeps named cache generations. A generation is replaced wholesale:
// entries are never merged across generations or invalidated one by one.
type Store interface {
	// Open creates the generation if it does not exist yet.
	Open(ctx context.Context, generation string) error

	// PutAll stores every entry in the generation, or none of them.
	PutAll(ctx context.Context, generation string, entries []Entry) error

	// Match looks up url in a single generation.
	Match(ctx context.Context, generation, url string) (Entry, bool, error)

	// Keys lists generation names in creation order.
	Keys(ctx context.Context) ([]string, error)

	// Delete drops a generation and all of its entries. It reports whether
	// the generation existed.
	Delete(ctx context.Context, generation string) (bool, error)

	Close() error
}
