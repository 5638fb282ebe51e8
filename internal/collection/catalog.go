package collection

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCatalog reads the baseline card catalog snapshot from a JSON file.
// The snapshot is a CardCollection keyed by collector number with zeroed
// ownership counts; it is a shipped data asset, not recomputed. An empty
// path yields an empty catalog, in which case every card is synthesized
// from live query results.
func LoadCatalog(path string) (CardCollection, error) {
	if path == "" {
		return CardCollection{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var catalog CardCollection
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	// The snapshot omits collector numbers on some older entries; backfill
	// from the map key so lookups stay consistent.
	for number, card := range catalog {
		if card.CollectorNumber == "" {
			card.CollectorNumber = number
		}
	}

	return catalog, nil
}
