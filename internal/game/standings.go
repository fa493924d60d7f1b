package game

import (
	"buzzer/internal/model"
	"cmp"
	"slices"
)

// rankStandings sorts by descending score, keeping join order among equal
// scores, and assigns competition ranks (1, 1, 3)
func rankStandings(s []model.Standing) {
	slices.SortStableFunc(s, func(a, b model.Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for i := range s {
		if i > 0 && s[i].Score == s[i-1].Score {
			s[i].Rank = s[i-1].Rank
		} else {
			s[i].Rank = i + 1
		}
	}
}
