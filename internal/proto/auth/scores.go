package auth

import (
	"bytes"
	"sort"

	"github.com/zrax/moulars/internal/model"
	"github.com/zrax/moulars/internal/wire"
)

// encodeScoreList packs scores into the flat buffer ScoreGetScores/
// ScoreGetRanks/ScoreGetHighScores replies carry, one fixed-plus-string
// record per score (spec.md §4.D "Score"). Grounded on the same
// flatten-a-repeated-struct-into-one-buffer shape VaultFetchNodeRefs
// uses (internal/vault/codec.go's RefRecord); the field order here is
// this package's own since every reader of the buffer is this same
// codec.
func encodeScoreList(scores []model.Score) ([]byte, error) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	for _, s := range scores {
		if err := w.WriteUint32(s.ID); err != nil {
			return nil, err
		}
		if err := w.WriteUint32(s.OwnerIdx); err != nil {
			return nil, err
		}
		if err := w.WriteInt32(s.Type); err != nil {
			return nil, err
		}
		if err := w.WriteInt32(s.Points); err != nil {
			return nil, err
		}
		if err := w.WriteInt64(s.CreateTime.Unix()); err != nil {
			return nil, err
		}
		if err := w.WriteUTF16String(s.Name); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// sortScoresForRanks orders scores by points (ascending unless sortDesc
// is set) and pages the result, matching ScoreGetRanks's
// page_number/num_results/sort_desc fields. The backend has no
// cross-owner score index, so this ranks only the requesting owner's
// own scores rather than a true server-wide leaderboard; a real
// leaderboard needs a dedicated query the Backend interface does not
// expose (DESIGN.md "Score list wire format & ranking").
func sortScoresForRanks(scores []model.Score, sortDesc bool, pageNumber, numResults uint32) []model.Score {
	sorted := append([]model.Score(nil), scores...)
	sort.Slice(sorted, func(i, j int) bool {
		if sortDesc {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].Points < sorted[j].Points
	})
	if numResults == 0 {
		return sorted
	}
	start := int(pageNumber) * int(numResults)
	if start >= len(sorted) {
		return nil
	}
	end := start + int(numResults)
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}
