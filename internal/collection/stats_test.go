package collection

import "testing"

func TestComputeStats(t *testing.T) {
	cc := CardCollection{
		// Full playset of a common spell, extra copies ignored.
		"BTG-001-C": {CardType: CardTypeSpell, Rarity: RarityCommon, Faction: FactionAxiom, InMyCollection: 5},
		// Partial playset of a common character.
		"BTG-002-C": {CardType: CardTypeCharacter, Rarity: RarityCommon, Faction: FactionAxiom, InMyCollection: 1},
		// Rare permanent from another faction.
		"BTG-003-R": {CardType: CardTypePermanent, Rarity: RarityRare, Faction: FactionBravos, InMyCollection: 2},
		// Heroes need a single copy.
		"BTG-H-01": {CardType: CardTypeHero, Rarity: RarityCommon, Faction: FactionAxiom, InMyCollection: 1},
		// Uniques are excluded entirely.
		"BTG-001-U-7": {CardType: CardTypeSpell, Rarity: RarityUnique, Faction: FactionAxiom, InMyCollection: 1},
	}

	stats := ComputeStats(cc)

	if stats.Commons.Total.Owned != 5 || stats.Commons.Total.Needed != 7 {
		t.Errorf("commons total = %d/%d, want 5/7", stats.Commons.Total.Owned, stats.Commons.Total.Needed)
	}
	if ax := stats.Commons.ByFaction[FactionAxiom]; ax.Owned != 5 || ax.Needed != 7 {
		t.Errorf("commons AX = %d/%d, want 5/7", ax.Owned, ax.Needed)
	}
	if stats.Rares.Total.Owned != 2 || stats.Rares.Total.Needed != 3 {
		t.Errorf("rares total = %d/%d, want 2/3", stats.Rares.Total.Owned, stats.Rares.Total.Needed)
	}
	if br := stats.Rares.ByFaction[FactionBravos]; br.Owned != 2 || br.Needed != 3 {
		t.Errorf("rares BR = %d/%d, want 2/3", br.Owned, br.Needed)
	}

	// Every faction gets an entry, even with no cards.
	if _, ok := stats.Commons.ByFaction[FactionYzmir]; !ok {
		t.Error("missing faction entry for YZ")
	}
}

func TestPlaysetSize(t *testing.T) {
	tests := []struct {
		cardType CardType
		want     int
	}{
		{CardTypeSpell, 3},
		{CardTypePermanent, 3},
		{CardTypeCharacter, 3},
		{CardTypeHero, 1},
		{CardType("TOKEN"), 1},
	}

	for _, tt := range tests {
		if got := PlaysetSize(tt.cardType); got != tt.want {
			t.Errorf("PlaysetSize(%s) = %d, want %d", tt.cardType, got, tt.want)
		}
	}
}
