package collection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nmorel/altered-companion/internal/altered"
)

func record(id, reference, collectorNumber string, inCollection, inTradelist int, inWantlist bool) altered.APICard {
	card := altered.APICard{
		ID:                       id,
		Reference:                reference,
		Name:                     "Test Card",
		CollectorNumberFormatted: collectorNumber,
		InMyCollection:           inCollection,
		InMyTradelist:            inTradelist,
		InMyWantlist:             inWantlist,
	}
	card.CardType.Reference = "SPELL"
	card.Rarity.Reference = "COMMON"
	card.MainFaction.Reference = "AX"
	return card
}

func TestMerge_IntoFreshCollection(t *testing.T) {
	cc := make(CardCollection)

	Merge(cc, record("id-1", "ALT_CORE_B_AX_01_C", "BTG-001-C", 2, 1, true))

	card, ok := cc["BTG-001-C"]
	if !ok {
		t.Fatal("card not merged under its collector number")
	}
	if card.InMyCollection != 2 || card.InMyTradelist != 1 || !card.InMyWantlist {
		t.Errorf("aggregate counts = %d/%d/%v, want 2/1/true",
			card.InMyCollection, card.InMyTradelist, card.InMyWantlist)
	}
	if len(card.VersionsOwned) != 1 {
		t.Fatalf("got %d versions, want 1", len(card.VersionsOwned))
	}
	version := card.VersionsOwned[0]
	if version.Reference != "ALT_CORE_B_AX_01_C" || version.InMyCollection != 2 || version.InMyTradelist != 1 || !version.InMyWantlist {
		t.Errorf("version = %+v, want counts matching the record", version)
	}
}

func TestMerge_IsNotIdempotent(t *testing.T) {
	cc := make(CardCollection)
	rec := record("id-1", "ALT_CORE_B_AX_01_C", "BTG-001-C", 2, 1, false)

	Merge(cc, rec)
	Merge(cc, rec)

	card := cc["BTG-001-C"]
	if card.InMyCollection != 4 || card.InMyTradelist != 2 {
		t.Errorf("counts after double merge = %d/%d, want doubled 4/2",
			card.InMyCollection, card.InMyTradelist)
	}
	if got := card.VersionsOwned[0]; got.InMyCollection != 4 || got.InMyTradelist != 2 {
		t.Errorf("version counts after double merge = %d/%d, want 4/2",
			got.InMyCollection, got.InMyTradelist)
	}
}

func TestMerge_TwoVersionsOfSameCard(t *testing.T) {
	cc := make(CardCollection)

	Merge(cc, record("id-1", "ALT_CORE_B_AX_01_C", "BTG-001-C", 2, 0, false))
	Merge(cc, record("id-2", "ALT_COREKS_B_AX_01_C", "BTG-001-C", 1, 1, true))

	card := cc["BTG-001-C"]
	if len(card.VersionsOwned) != 2 {
		t.Fatalf("got %d versions, want 2", len(card.VersionsOwned))
	}
	if card.InMyCollection != 3 || card.InMyTradelist != 1 || !card.InMyWantlist {
		t.Errorf("aggregate = %d/%d/%v, want sum 3/1/true",
			card.InMyCollection, card.InMyTradelist, card.InMyWantlist)
	}
}

func TestMerge_PreservesBaselineMetadata(t *testing.T) {
	baseline := CardCollection{
		"BTG-001-C": {
			Name:            "Esquive",
			CollectorNumber: "BTG-001-C",
			CardType:        CardTypeSpell,
			Rarity:          RarityCommon,
			Faction:         FactionAxiom,
			ImagePath:       "/esquive.jpg",
		},
	}

	cc := baseline.Clone()
	Merge(cc, record("id-1", "ALT_CORE_B_AX_01_C", "BTG-001-C", 1, 0, false))

	card := cc["BTG-001-C"]
	if card.Name != "Esquive" || card.ImagePath != "/esquive.jpg" {
		t.Errorf("baseline metadata lost: %+v", card)
	}
	if card.InMyCollection != 1 {
		t.Errorf("count = %d, want 1", card.InMyCollection)
	}

	// The baseline itself must stay untouched.
	if baseline["BTG-001-C"].InMyCollection != 0 || len(baseline["BTG-001-C"].VersionsOwned) != 0 {
		t.Error("merge mutated the baseline catalog")
	}
}

func TestBuildCollection_FansOutAllFacets(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		members := []altered.APICard{}
		if r.URL.Query().Get("factions") == "AX" && r.URL.Query().Get("rarity") == "COMMON" {
			members = append(members, record("id-1", "ALT_CORE_B_AX_01_C", "BTG-001-C", 2, 0, false))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hydra:member": members})
	}))
	defer server.Close()

	client := altered.NewClient(server.URL)
	cc, err := BuildCollection(context.Background(), client, "Bearer test", make(CardCollection))
	if err != nil {
		t.Fatalf("BuildCollection: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 18 {
		t.Errorf("made %d facet queries, want 18 (6 factions x 3 rarities)", got)
	}
	card, ok := cc["BTG-001-C"]
	if !ok {
		t.Fatal("fetched card missing from collection")
	}
	if card.InMyCollection != 2 {
		t.Errorf("InMyCollection = %d, want 2", card.InMyCollection)
	}
}

func TestBuildCollection_AbortsOnTerminalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("factions") == "MU" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hydra:member": []altered.APICard{}})
	}))
	defer server.Close()

	client := altered.NewClient(server.URL)
	_, err := BuildCollection(context.Background(), client, "Bearer test", make(CardCollection))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !altered.IsTerminal(err) {
		t.Errorf("error is not terminal: %v", err)
	}
}
