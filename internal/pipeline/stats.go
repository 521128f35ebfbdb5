// Package pipeline computes portfolio views over many deals.
//
// Where guidance looks at one deal, pipeline looks across the funnel:
// value and velocity per stage, and the nudges a seller should see when
// opening the day. Like guidance it is pure; the caller supplies the deals
// and the clock.
package pipeline

import (
	"math"
	"time"

	"github.com/HendryAvila/dealcoach/internal/deals"
	"github.com/HendryAvila/dealcoach/internal/stages"
)

// StageStats aggregates the open deals sitting in one stage.
type StageStats struct {
	Stage          stages.Stage `json:"stage"`
	Count          int          `json:"count"`
	Value          int64        `json:"value"`
	AvgDaysInStage int          `json:"avg_days_in_stage"`
}

// Stats is the funnel summary.
type Stats struct {
	ByStage    []StageStats `json:"by_stage"`
	OpenDeals  int          `json:"open_deals"`
	OpenValue  int64        `json:"open_value"`
	WonDeals   int          `json:"won_deals"`
	LostDeals  int          `json:"lost_deals"`
	TotalValue int64        `json:"total_value"` // open + won, lost excluded
}

// Summarize builds Stats. ByStage lists every open stage in funnel order,
// including empty ones.
func Summarize(ds []deals.Deal, now time.Time) Stats {
	open := stages.Order[:len(stages.Order)-1] // everything before won
	byStage := make(map[stages.Stage]*StageStats, len(open))
	daysSum := make(map[stages.Stage]int, len(open))

	var st Stats
	for _, s := range open {
		st.ByStage = append(st.ByStage, StageStats{Stage: s})
	}
	for i := range st.ByStage {
		byStage[st.ByStage[i].Stage] = &st.ByStage[i]
	}

	for i := range ds {
		d := &ds[i]
		switch d.Stage {
		case stages.StageLost:
			st.LostDeals++
			continue
		case stages.StageWon:
			st.WonDeals++
			st.TotalValue += d.DealValue
			continue
		}

		st.TotalValue += d.DealValue
		st.OpenDeals++
		st.OpenValue += d.DealValue

		agg, ok := byStage[stages.Normalize(string(d.Stage))]
		if !ok {
			continue
		}
		agg.Count++
		agg.Value += d.DealValue
		daysSum[agg.Stage] += deals.DaysInStage(d, now)
	}

	for i := range st.ByStage {
		agg := &st.ByStage[i]
		if agg.Count > 0 {
			agg.AvgDaysInStage = int(math.Round(float64(daysSum[agg.Stage]) / float64(agg.Count)))
		}
	}
	return st
}
