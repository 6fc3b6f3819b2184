// Package stats computes session statistics over solve lists using WCA
// averaging rules: an average-of-N drops the single best and worst results,
// a DNF counts as the worst result, and two or more DNFs make the average
// itself a DNF.
package stats

import (
	"sort"

	"github.com/samber/lo"

	"cubedeck/internal/model"
)

// Statistics summarizes a solve list. Millisecond values are nil when the
// underlying window is unavailable or is itself a DNF.
type Statistics struct {
	Count int    `json:"count"`
	Best  *int64 `json:"best"`
	Worst *int64 `json:"worst"`
	Mean  *int64 `json:"mean"`

	Ao5   *int64 `json:"ao5"`
	Ao12  *int64 `json:"ao12"`
	Ao50  *int64 `json:"ao50"`
	Ao100 *int64 `json:"ao100"`

	BestAo5  *int64 `json:"bestAo5"`
	BestAo12 *int64 `json:"bestAo12"`
}

// Compute summarizes the given solves, oldest first.
func Compute(solves []*model.Solve) Statistics {
	st := Statistics{Count: len(solves)}
	if len(solves) == 0 {
		return st
	}

	var (
		sum      int64
		counting int
	)
	for _, s := range solves {
		ms, ok := s.EffectiveDuration()
		if !ok {
			continue
		}
		if st.Best == nil || ms < *st.Best {
			st.Best = lo.ToPtr(ms)
		}
		if st.Worst == nil || ms > *st.Worst {
			st.Worst = lo.ToPtr(ms)
		}
		sum += ms
		counting++
	}
	if counting > 0 {
		st.Mean = lo.ToPtr(sum / int64(counting))
	}

	st.Ao5 = AverageOfLast(solves, 5)
	st.Ao12 = AverageOfLast(solves, 12)
	st.Ao50 = AverageOfLast(solves, 50)
	st.Ao100 = AverageOfLast(solves, 100)
	st.BestAo5 = BestAverage(solves, 5)
	st.BestAo12 = BestAverage(solves, 12)
	return st
}

// AverageOfLast computes the trimmed average of the newest n solves, nil
// when fewer than n exist or the window is a DNF average.
func AverageOfLast(solves []*model.Solve, n int) *int64 {
	if len(solves) < n {
		return nil
	}
	return trimmedAverage(solves[len(solves)-n:])
}

// BestAverage slides an n-wide window over the whole list and returns the
// best trimmed average found, nil when no window produces one.
func BestAverage(solves []*model.Solve, n int) *int64 {
	if len(solves) < n {
		return nil
	}
	var best *int64
	for i := 0; i+n <= len(solves); i++ {
		avg := trimmedAverage(solves[i : i+n])
		if avg == nil {
			continue
		}
		if best == nil || *avg < *best {
			best = avg
		}
	}
	return best
}

// trimmedAverage applies the WCA rule to one window: drop the single best
// and single worst result, average the rest. One DNF sorts as the worst
// result and gets dropped; a second makes the whole window a DNF (nil).
func trimmedAverage(window []*model.Solve) *int64 {
	type result struct {
		ms  int64
		dnf bool
	}
	results := make([]result, 0, len(window))
	dnfs := 0
	for _, s := range window {
		ms, ok := s.EffectiveDuration()
		if !ok {
			dnfs++
		}
		results = append(results, result{ms: ms, dnf: !ok})
	}
	if dnfs >= 2 {
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].dnf != results[j].dnf {
			return results[j].dnf
		}
		return results[i].ms < results[j].ms
	})

	trimmed := results[1 : len(results)-1]
	var sum int64
	for _, r := range trimmed {
		sum += r.ms
	}
	return lo.ToPtr(sum / int64(len(trimmed)))
}
