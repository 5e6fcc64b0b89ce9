package recipe

import (
	"context"
	"fmt"
	"regexp"
)

// Store is a read handle on the recipe records, opened once per process
// and shared by all requests.
type Store interface {
	// Get returns the record for id or an error wrapping ErrRecordNotFound.
	Get(ctx context.Context, id string) (*Recipe, error)
	// GetMany returns the records found for ids; missing ids are absent
	// from the map rather than errors.
	GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error)
	Ping(ctx context.Context) error
	Close() error
}

// Loader is implemented by stores the index builder can populate.
type Loader interface {
	Put(ctx context.Context, recipes []*Recipe) error
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
