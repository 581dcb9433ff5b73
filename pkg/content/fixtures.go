package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// LoadFixtures reads a JSON array of items and writes them in order.
// Items without an organization are stored in organization.
func LoadFixtures(ctx context.Context, w Writer, organization string, r io.Reader) (int, error) {
	var items []*Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}
	for i := range items {
		if items[i].Organization == "" {
			items[i].Organization = organization
		}
		if _, err := w.Put(ctx, items[i]); err != nil {
			return i, fmt.Errorf("fixture %d (%s): %w", i, items[i].Ref(), err)
		}
	}
	return len(items), nil
}
