package tournament

import "sort"

// pair is one scheduled match.
type pair struct {
	a, b *participant
}

// pairRound schedules matches for one round of Swiss pairing.
//
// Round 1 seeds by the caller-supplied original score; later rounds sort by
// current points with Buchholz as tiebreak. Pairing is greedy top-down,
// skipping any candidate pair already recorded as opponents. Participants
// left unpaired (odd counts, or stranded by the no-rematch rule) are
// returned as byes.
func pairRound(parts []*participant, round int, useBuchholz bool) (pairs []pair, byes []*participant) {
	sorted := make([]*participant, len(parts))
	copy(sorted, parts)

	if round == 1 {
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].doc.Score != sorted[j].doc.Score {
				return sorted[i].doc.Score > sorted[j].doc.Score
			}
			return sorted[i].doc.ID < sorted[j].doc.ID
		})
	} else {
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].points != sorted[j].points {
				return sorted[i].points > sorted[j].points
			}
			if useBuchholz && sorted[i].buchholz != sorted[j].buchholz {
				return sorted[i].buchholz > sorted[j].buchholz
			}
			return sorted[i].doc.ID < sorted[j].doc.ID
		})
	}

	paired := make(map[string]bool, len(sorted))
	for i, p := range sorted {
		if paired[p.doc.ID] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			q := sorted[j]
			if paired[q.doc.ID] {
				continue
			}
			if _, played := p.opponents[q.doc.ID]; played {
				continue
			}
			pairs = append(pairs, pair{a: p, b: q})
			paired[p.doc.ID] = true
			paired[q.doc.ID] = true
			break
		}
	}

	for _, p := range sorted {
		if !paired[p.doc.ID] {
			byes = append(byes, p)
		}
	}
	return pairs, byes
}
