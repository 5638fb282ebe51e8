package collection

// PlaysetProgress accumulates owned-vs-needed playset copies.
type PlaysetProgress struct {
	Owned  int `json:"owned"`
	Needed int `json:"needed"`
}

func (p *PlaysetProgress) add(owned, needed int) {
	p.Owned += owned
	p.Needed += needed
}

// PlaysetStats breaks playset completion down by faction, with an overall
// total.
type PlaysetStats struct {
	Total     PlaysetProgress             `json:"total"`
	ByFaction map[Faction]PlaysetProgress `json:"byFaction"`
}

func newPlaysetStats() PlaysetStats {
	stats := PlaysetStats{ByFaction: make(map[Faction]PlaysetProgress, len(AllFactions))}
	for _, faction := range AllFactions {
		stats.ByFaction[faction] = PlaysetProgress{}
	}
	return stats
}

func (s *PlaysetStats) add(faction Faction, owned, needed int) {
	s.Total.add(owned, needed)
	progress := s.ByFaction[faction]
	progress.add(owned, needed)
	s.ByFaction[faction] = progress
}

// Stats summarizes playset completion for the common and rare pools.
// Uniques are one-offs and excluded.
type Stats struct {
	Commons PlaysetStats `json:"commons"`
	Rares   PlaysetStats `json:"rares"`
}

// ComputeStats walks the collection and accumulates playset completion.
// A card counts for at most PlaysetSize copies regardless of how many the
// user owns.
func ComputeStats(cc CardCollection) Stats {
	stats := Stats{
		Commons: newPlaysetStats(),
		Rares:   newPlaysetStats(),
	}

	for _, card := range cc {
		needed := PlaysetSize(card.CardType)
		owned := card.InMyCollection
		if owned > needed {
			owned = needed
		}

		switch card.Rarity {
		case RarityCommon:
			stats.Commons.add(card.Faction, owned, needed)
		case RarityRare:
			stats.Rares.add(card.Faction, owned, needed)
		}
	}

	return stats
}
