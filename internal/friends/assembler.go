package friends

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/collection"
)

// uniqueMarker appears in every unique printing reference
// (e.g. ALT_CORE_B_AX_01_U_777). Uniques never exist in the baseline
// catalog and must be looked up individually.
const uniqueMarker = "_U_"

// cacheSize bounds the in-memory unique metadata cache.
const cacheSize = 2048

// CardCache is durable storage for unique card metadata, so individual
// lookups survive restarts. Implementations must be safe for concurrent use.
type CardCache interface {
	Get(ctx context.Context, reference string) (*FriendCard, bool, error)
	Put(ctx context.Context, reference string, card *FriendCard) error
}

// Assembler resolves friends' tradelist entries into displayable cards,
// using the baseline catalog for regular printings and cached individual
// lookups for uniques.
type Assembler struct {
	client  *altered.Client
	catalog collection.CardCollection
	cache   CardCache
	memory  *lru.Cache
}

// NewAssembler builds an assembler over the given catalog. cache may be nil,
// in which case unique lookups are only memoized in memory.
func NewAssembler(client *altered.Client, catalog collection.CardCollection, cache CardCache) *Assembler {
	memory, _ := lru.New(cacheSize)
	return &Assembler{
		client:  client,
		catalog: catalog,
		cache:   cache,
		memory:  memory,
	}
}

// Assemble fetches and resolves one friend's full tradelist. The vendor
// splits tradelists by rarity class, so two queries run concurrently: one
// for {RARE,COMMON} and one for {UNIQUE}. The join is fail-fast.
func (a *Assembler) Assemble(ctx context.Context, token string, friend Friend) ([]FriendCard, error) {
	raritySets := [][]string{
		{"RARE", "COMMON"},
		{"UNIQUE"},
	}

	results := make([][]FriendCard, len(raritySets))

	g, gctx := errgroup.WithContext(ctx)
	for i, rarities := range raritySets {
		g.Go(func() error {
			entries, err := a.client.GetFriendTradelist(gctx, token, friend.ID, rarities)
			if err != nil {
				return err
			}
			cards, err := a.resolveAll(gctx, token, entries)
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble tradelist for %s: %w", friend.Name, err)
	}

	cards := make([]FriendCard, 0, len(results[0])+len(results[1]))
	for _, slice := range results {
		cards = append(cards, slice...)
	}
	return cards, nil
}

// AssembleAll assembles every friend's tradelist concurrently and returns
// them keyed by friend ID. The first failure aborts the whole batch.
func (a *Assembler) AssembleAll(ctx context.Context, token string, friends []Friend) (map[string][]FriendCard, error) {
	var mu sync.Mutex
	tradelists := make(map[string][]FriendCard, len(friends))

	g, gctx := errgroup.WithContext(ctx)
	for _, friend := range friends {
		g.Go(func() error {
			cards, err := a.Assemble(gctx, token, friend)
			if err != nil {
				return err
			}
			mu.Lock()
			tradelists[friend.ID] = cards
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tradelists, nil
}

// resolveAll turns raw tradelist entries into FriendCards. Regular printings
// resolve against the catalog; uniques go through the cached individual
// lookup. Unknown non-unique references are silently dropped: the baseline
// catalog lags new releases, and the vendor UI drops them the same way.
func (a *Assembler) resolveAll(ctx context.Context, token string, entries []altered.APIFriendCard) ([]FriendCard, error) {
	cards := make([]FriendCard, 0, len(entries))

	var uniqueRefs []string
	var uniqueQuantities []int

	for _, entry := range entries {
		if card, ok := a.catalog.FindByReference(entry.Reference); ok {
			cards = append(cards, FriendCard{
				Name:            entry.Name,
				Reference:       entry.Reference,
				CollectorNumber: card.CollectorNumber,
				CardType:        card.CardType,
				Rarity:          card.Rarity,
				Faction:         card.Faction,
				ImagePath:       entry.ImagePath,
				TheyHave:        entry.Quantity,
			})
			continue
		}

		if strings.Contains(entry.Reference, uniqueMarker) {
			uniqueRefs = append(uniqueRefs, entry.Reference)
			uniqueQuantities = append(uniqueQuantities, entry.Quantity)
		}
	}

	if len(uniqueRefs) == 0 {
		return cards, nil
	}

	uniques := make([]FriendCard, len(uniqueRefs))

	g, gctx := errgroup.WithContext(ctx)
	for i, reference := range uniqueRefs {
		g.Go(func() error {
			card, err := a.lookupUnique(gctx, token, reference)
			if err != nil {
				return err
			}
			card.TheyHave = uniqueQuantities[i]
			uniques[i] = *card
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(cards, uniques...), nil
}

// lookupUnique resolves one unique printing, checking the in-memory cache,
// then the durable cache, then the vendor. Concurrent first-time lookups of
// the same reference may both fetch; the last write wins, which is harmless
// for immutable card metadata.
func (a *Assembler) lookupUnique(ctx context.Context, token, reference string) (*FriendCard, error) {
	if cached, ok := a.memory.Get(reference); ok {
		card := cached.(FriendCard)
		return &card, nil
	}

	if a.cache != nil {
		card, ok, err := a.cache.Get(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("card cache lookup for %s: %w", reference, err)
		}
		if ok {
			a.memory.Add(reference, *card)
			return card, nil
		}
	}

	apiCard, err := a.client.GetCard(ctx, token, reference)
	if err != nil {
		return nil, err
	}

	card := &FriendCard{
		Name:            apiCard.Name,
		Reference:       apiCard.Reference,
		CollectorNumber: apiCard.CollectorNumber,
		CardType:        collection.CardType(apiCard.CardType.Reference),
		Rarity:          collection.Rarity(apiCard.Rarity.Reference),
		Faction:         collection.Faction(apiCard.MainFaction.Reference),
		ImagePath:       apiCard.ImagePath,
		TheyHave:        1,
	}

	if a.cache != nil {
		if err := a.cache.Put(ctx, reference, card); err != nil {
			return nil, fmt.Errorf("card cache store for %s: %w", reference, err)
		}
	}
	a.memory.Add(reference, *card)

	return card, nil
}
