package collection

import (
	"context"
	"fmt"

	"github.com/nmorel/altered-companion/internal/altered"
)

// ToggleWantlist flips a card's wantlist membership and returns the new
// state. The current state is read live from the vendor rather than from a
// possibly stale local snapshot.
func ToggleWantlist(ctx context.Context, client *altered.Client, token, reference string) (bool, error) {
	card, err := client.GetCard(ctx, token, reference)
	if err != nil {
		return false, fmt.Errorf("fetch wantlist status for %s: %w", reference, err)
	}

	if card.InMyWantlist {
		if err := client.RemoveFromWantlist(ctx, token, reference); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := client.AddToWantlist(ctx, token, reference); err != nil {
		return false, err
	}
	return true, nil
}
