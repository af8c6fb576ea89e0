package recommend

import "market_server/core/domain"

// Fixed hybrid weights per scorer slot.
var hybridWeights = map[domain.CandidateSource]float64{
	domain.SourceCollaborative: 0.3,
	domain.SourceContentBased:  0.4,
	domain.SourceSeasonal:      0.2,
	domain.SourceBundle:        0.1,
}

// Merge order: ascending weight, so the highest-weight source merges last
// and its reason/source metadata wins on key collisions. Weighted scores are
// summed across sources either way.
var mergeOrder = []domain.CandidateSource{
	domain.SourceBundle,
	domain.SourceSeasonal,
	domain.SourceCollaborative,
	domain.SourceContentBased,
}

// combineHybrid merges the four scorer outputs into one ranking.
func combineHybrid(lists map[domain.CandidateSource][]domain.Candidate, limit int) []domain.Candidate {
	if limit <= 0 {
		return []domain.Candidate{}
	}

	merged := make(map[string]*domain.Candidate)
	var order []string

	for _, source := range mergeOrder {
		weight := hybridWeights[source]
		for _, c := range lists[source] {
			key := c.Key()
			weighted := c.Score * weight

			existing, ok := merged[key]
			if !ok {
				c.Score = weighted
				merged[key] = &c
				order = append(order, key)
				continue
			}

			// Same key from multiple scorers: sum weighted scores, let the
			// later (higher-weight) entry's metadata win.
			c.Score = weighted + existing.Score
			merged[key] = &c
		}
	}

	candidates := make([]domain.Candidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, *merged[key])
	}

	sortCandidates(candidates)
	return truncate(candidates, limit)
}
