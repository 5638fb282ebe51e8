package friends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nmorel/altered-companion/internal/altered"
	"github.com/nmorel/altered-companion/internal/collection"
)

// memoryCache is a map-backed CardCache for tests.
type memoryCache struct {
	mu    sync.Mutex
	cards map[string]FriendCard
}

func newMemoryCache() *memoryCache {
	return &memoryCache{cards: make(map[string]FriendCard)}
}

func (c *memoryCache) Get(_ context.Context, reference string) (*FriendCard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	card, ok := c.cards[reference]
	if !ok {
		return nil, false, nil
	}
	return &card, true, nil
}

func (c *memoryCache) Put(_ context.Context, reference string, card *FriendCard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[reference] = *card
	return nil
}

func testCatalog() collection.CardCollection {
	return collection.CardCollection{
		"BTG-001-C": {
			Name:            "Esquive",
			CollectorNumber: "BTG-001-C",
			CardType:        collection.CardTypeSpell,
			Rarity:          collection.RarityCommon,
			Faction:         collection.FactionAxiom,
			ImagePath:       "/catalog.jpg",
			VersionsOwned: []collection.VersionOwned{
				{ID: "id-1", Reference: "ALT_CORE_B_AX_01_C"},
			},
		},
	}
}

// tradelistServer serves a friend tradelist whose {RARE,COMMON} slice is
// commonEntries (raw hydra:member JSON) and whose {UNIQUE} slice is empty,
// plus individual unique card lookups counted through cardFetches.
func tradelistServer(t *testing.T, commonEntries string, cardFetches *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/ownership_lists/tradelist/users/"):
			if strings.Contains(r.URL.Path, "friend-bad") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			members := commonEntries
			if rarities := r.URL.Query()["rarity[]"]; len(rarities) == 1 && rarities[0] == "UNIQUE" {
				members = ""
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"hydra:member":[%s]}`, members)

		case strings.HasPrefix(r.URL.Path, "/cards/"):
			atomic.AddInt32(cardFetches, 1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"reference":       "ALT_CORE_B_AX_01_U_777",
				"name":            "Esquive",
				"collectorNumber": "BTG-001-U-777",
				"imagePath":       "/unique.jpg",
				"cardType":        map[string]string{"reference": "SPELL"},
				"rarity":          map[string]string{"reference": "UNIQUE"},
				"mainFaction":     map[string]string{"reference": "AX"},
			})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestAssemble_ResolvesFromCatalog(t *testing.T) {
	var fetches int32
	server := tradelistServer(t,
		`{"reference":"ALT_CORE_B_AX_01_C","name":"Esquive","imagePath":"/e.jpg","quantity":2}`,
		&fetches)
	defer server.Close()

	assembler := NewAssembler(altered.NewClient(server.URL), testCatalog(), nil)
	cards, err := assembler.Assemble(context.Background(), "Bearer test", Friend{ID: "friend-1", Name: "Alice"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	card := cards[0]
	if card.TheyHave != 2 {
		t.Errorf("TheyHave = %d, want 2", card.TheyHave)
	}
	if card.CollectorNumber != "BTG-001-C" || card.CardType != collection.CardTypeSpell || card.Faction != collection.FactionAxiom {
		t.Errorf("catalog metadata not applied: %+v", card)
	}
	// The live tradelist entry supplies the image, not the catalog.
	if card.ImagePath != "/e.jpg" {
		t.Errorf("ImagePath = %s, want /e.jpg", card.ImagePath)
	}
	if atomic.LoadInt32(&fetches) != 0 {
		t.Errorf("made %d card fetches, want 0", fetches)
	}
}

func TestAssemble_DropsUnknownNonUniqueReference(t *testing.T) {
	var fetches int32
	server := tradelistServer(t,
		`{"reference":"ALT_NEWSET_B_AX_99_C","name":"Nouveauté","imagePath":"/n.jpg","quantity":1}`,
		&fetches)
	defer server.Close()

	assembler := NewAssembler(altered.NewClient(server.URL), testCatalog(), nil)
	cards, err := assembler.Assemble(context.Background(), "Bearer test", Friend{ID: "friend-1", Name: "Alice"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("got %d cards, want 0 (unknown reference dropped)", len(cards))
	}
	if atomic.LoadInt32(&fetches) != 0 {
		t.Errorf("made %d card fetches, want 0", fetches)
	}
}

func TestAssemble_UniqueLookupIsCached(t *testing.T) {
	var fetches int32
	server := tradelistServer(t,
		`{"reference":"ALT_CORE_B_AX_01_U_777","name":"Esquive","imagePath":"/u.jpg","quantity":1}`,
		&fetches)
	defer server.Close()

	cache := newMemoryCache()
	client := altered.NewClient(server.URL)
	friend := Friend{ID: "friend-1", Name: "Alice"}

	assembler := NewAssembler(client, testCatalog(), cache)
	cards, err := assembler.Assemble(context.Background(), "Bearer test", friend)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].CollectorNumber != "BTG-001-U-777" || cards[0].Rarity != collection.RarityUnique {
		t.Errorf("unique not resolved from lookup: %+v", cards[0])
	}
	if atomic.LoadInt32(&fetches) != 1 {
		t.Fatalf("made %d card fetches, want 1", fetches)
	}

	// A fresh assembler sharing the durable cache never refetches.
	assembler = NewAssembler(client, testCatalog(), cache)
	if _, err := assembler.Assemble(context.Background(), "Bearer test", friend); err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	if atomic.LoadInt32(&fetches) != 1 {
		t.Errorf("made %d total card fetches, want 1 (durable cache hit)", fetches)
	}
}

func TestLookupUnique_ConcurrentFirstLookup(t *testing.T) {
	var fetches int32
	server := tradelistServer(t, "", &fetches)
	defer server.Close()

	assembler := NewAssembler(altered.NewClient(server.URL), testCatalog(), newMemoryCache())

	// Two racing lookups of the same uncached reference may each miss both
	// cache tiers and fetch; the last write wins, which is harmless because
	// card metadata is immutable.
	const reference = "ALT_CORE_B_AX_01_U_777"
	results := make([]*FriendCard, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = assembler.lookupUnique(context.Background(), "Bearer test", reference)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&fetches); got < 1 || got > 2 {
		t.Errorf("made %d card fetches, want 1 or 2", got)
	}
	if *results[0] != *results[1] {
		t.Errorf("lookups disagree: %+v vs %+v", *results[0], *results[1])
	}
}

func TestAssembleAll_FailFast(t *testing.T) {
	var fetches int32
	server := tradelistServer(t, "", &fetches)
	defer server.Close()

	assembler := NewAssembler(altered.NewClient(server.URL), testCatalog(), nil)
	_, err := assembler.AssembleAll(context.Background(), "Bearer test", []Friend{
		{ID: "friend-1", Name: "Alice"},
		{ID: "friend-bad", Name: "Mallory"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !altered.IsTerminal(err) {
		t.Errorf("error is not terminal: %v", err)
	}
}

func TestFetchFriends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"hydra:member":[
			{"userFriend":{"id":"friend-1","nickName":"Alice"}},
			{"userFriend":{"id":"friend-2","nickName":"Bob"}}
		]}`)
	}))
	defer server.Close()

	friends, err := FetchFriends(context.Background(), altered.NewClient(server.URL), "Bearer test")
	if err != nil {
		t.Fatalf("FetchFriends: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("got %d friends, want 2", len(friends))
	}
	if friends[0].ID != "friend-1" || friends[0].Name != "Alice" {
		t.Errorf("friends[0] = %+v", friends[0])
	}
	if !friends[1].UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be zero on a fresh fetch")
	}
}
