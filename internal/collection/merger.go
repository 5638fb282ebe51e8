package collection

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/nmorel/altered-companion/internal/altered"
)

// Merge folds one card record from a faceted query into the collection.
//
// The fold is additive: counts from the record are added to the aggregate
// and to the matching version entry, and the wantlist flag is ORed in.
// Merging the same record twice therefore doubles its counts; callers must
// only ever merge into a fresh baseline copy (see BuildCollection).
func Merge(cc CardCollection, record altered.APICard) {
	card, ok := cc[record.CollectorNumberFormatted]
	if !ok {
		card = newCard(record)
		cc[record.CollectorNumberFormatted] = card
	}

	card.InMyCollection += record.InMyCollection
	card.InMyTradelist += record.InMyTradelist
	card.InMyWantlist = card.InMyWantlist || record.InMyWantlist

	if version := card.version(record.Reference); version != nil {
		version.InMyCollection += record.InMyCollection
		version.InMyTradelist += record.InMyTradelist
		version.InMyWantlist = version.InMyWantlist || record.InMyWantlist
		return
	}

	card.VersionsOwned = append(card.VersionsOwned, VersionOwned{
		ID:             record.ID,
		Reference:      record.Reference,
		InMyCollection: record.InMyCollection,
		InMyTradelist:  record.InMyTradelist,
		InMyWantlist:   record.InMyWantlist,
	})
}

// newCard synthesizes a card with zero counts from a query record, for
// cards newer than the baseline catalog snapshot.
func newCard(record altered.APICard) *Card {
	// Subtypes keep both display name and reference, so the UI can filter
	// on either.
	subtypes := make([]string, 0, len(record.CardSubTypes)*2)
	for _, subtype := range record.CardSubTypes {
		subtypes = append(subtypes, subtype.Name, subtype.Reference)
	}

	return &Card{
		Name:            record.Name,
		CollectorNumber: record.CollectorNumberFormatted,
		CardType:        CardType(record.CardType.Reference),
		CardSubTypes:    subtypes,
		Rarity:          Rarity(record.Rarity.Reference),
		Faction:         Faction(record.MainFaction.Reference),
		ImagePath:       record.ImagePath,
	}
}

// BuildCollection assembles the user's full collection: one faceted query
// per (faction, rarity) pair, 18 in total, fanned out concurrently, then
// folded into a fresh copy of the baseline catalog.
//
// The join is fail-fast: the first terminal or retry-exhausted query error
// aborts the whole build and is returned to the caller. Each query fetches
// page 1 only; facet slices exceeding the page size are truncated upstream.
func BuildCollection(ctx context.Context, client *altered.Client, token string, baseline CardCollection) (CardCollection, error) {
	type facet struct {
		faction Faction
		rarity  Rarity
	}

	facets := make([]facet, 0, len(AllFactions)*len(AllRarities))
	for _, faction := range AllFactions {
		for _, rarity := range AllRarities {
			facets = append(facets, facet{faction, rarity})
		}
	}

	results := make([][]altered.APICard, len(facets))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range facets {
		g.Go(func() error {
			cards, err := client.GetCards(gctx, token, altered.CardFilter{
				Factions: []string{string(f.faction)},
				Rarities: []string{string(f.rarity)},
			})
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	collection := baseline.Clone()
	merged := 0
	for _, cards := range results {
		for _, record := range cards {
			Merge(collection, record)
			merged++
		}
	}

	log.Printf("[BuildCollection] merged %d card records into %d cards", merged, len(collection))

	return collection, nil
}
