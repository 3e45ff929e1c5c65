package planner

import (
	"fmt"
	"sort"
	"time"
)

type CheckinStatus string

const (
	NeedsCheckin CheckinStatus = "needs_checkin"
	UpToDate     CheckinStatus = "up_to_date"
)

// Measurement is one check-in as the adjuster sees it.
type Measurement struct {
	MeasuredAt time.Time
	WeightKg   float64
	BodyFatPct *float64
	MusclePct  *float64
}

type WeeklyChanges struct {
	WeightChangeKg float64   `json:"weight_change_kg"`
	BodyFatChange  *float64  `json:"body_fat_change,omitempty"`
	MuscleChange   *float64  `json:"muscle_change,omitempty"`
	WeeksTracked   int       `json:"weeks_tracked"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
}

// TargetsChanged tells plan regeneration that plans built from an older
// target are stale from EffectiveFrom on.
type TargetsChanged struct {
	EffectiveFrom time.Time   `json:"effective_from"`
	Target        MacroTarget `json:"target"`
	Reason        string      `json:"reason"`
}

type CheckinOutcome struct {
	Changes      *WeeklyChanges  `json:"changes,omitempty"`
	Recalculated bool            `json:"recalculated"`
	Energy       *EnergyResult   `json:"energy,omitempty"`
	Event        *TargetsChanged `json:"event,omitempty"`
}

// WeekStart returns Monday 00:00 of t's week in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Status is UpToDate only when the latest check-in falls in now's week.
func Status(latest *time.Time, now time.Time) CheckinStatus {
	if latest == nil {
		return NeedsCheckin
	}
	if WeekStart(latest.In(now.Location())).Equal(WeekStart(now)) {
		return UpToDate
	}
	return NeedsCheckin
}

// ComputeWeeklyChanges diffs the two most recent measurements. It returns nil
// for fewer than two. Weeks are counted in loc, the same location Status uses
// for now; nil means UTC.
func ComputeWeeklyChanges(history []Measurement, loc *time.Location) *WeeklyChanges {
	if len(history) < 2 {
		return nil
	}
	sorted := sortedDesc(history)
	latest, prev := sorted[0], sorted[1]

	changes := &WeeklyChanges{
		WeightChangeKg: round1(latest.WeightKg - prev.WeightKg),
		WeeksTracked:   weeksTracked(sorted, loc),
		From:           prev.MeasuredAt,
		To:             latest.MeasuredAt,
	}
	if latest.BodyFatPct != nil && prev.BodyFatPct != nil {
		v := round1(*latest.BodyFatPct - *prev.BodyFatPct)
		changes.BodyFatChange = &v
	}
	if latest.MusclePct != nil && prev.MusclePct != nil {
		v := round1(*latest.MusclePct - *prev.MusclePct)
		changes.MuscleChange = &v
	}
	return changes
}

func sortedDesc(history []Measurement) []Measurement {
	out := make([]Measurement, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeasuredAt.After(out[j].MeasuredAt)
	})
	return out
}

// LatestMeasurement returns the most recent measurement regardless of the
// order history was recorded in.
func LatestMeasurement(history []Measurement) (Measurement, bool) {
	if len(history) == 0 {
		return Measurement{}, false
	}
	return sortedDesc(history)[0], true
}

func weeksTracked(history []Measurement, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	weeks := make(map[time.Time]struct{}, len(history))
	for _, m := range history {
		weeks[WeekStart(m.MeasuredAt.In(loc))] = struct{}{}
	}
	return len(weeks)
}

// ProjectProfile overlays a measurement onto a profile. Absent optional
// fields keep the profile's values.
func ProjectProfile(p BodyProfile, m Measurement) BodyProfile {
	out := p
	if m.WeightKg > 0 {
		out.WeightKg = m.WeightKg
	}
	if m.BodyFatPct != nil {
		v := *m.BodyFatPct
		out.BodyFatPct = &v
	}
	if m.MusclePct != nil {
		v := *m.MusclePct
		out.MusclePct = &v
	}
	return out
}

type Adjuster struct {
	Energy   EnergyConfig
	MinWeeks int
}

func NewAdjuster(cfg EnergyConfig) *Adjuster {
	return &Adjuster{Energy: cfg, MinWeeks: 2}
}

// Evaluate runs the feedback step over a measurement history. Targets are
// recomputed only once MinWeeks distinct weeks have been tracked.
func (a *Adjuster) Evaluate(history []Measurement, profile BodyProfile, goal Goal, level FitnessLevel, now time.Time) CheckinOutcome {
	out := CheckinOutcome{Changes: ComputeWeeklyChanges(history, now.Location())}
	if out.Changes == nil || out.Changes.WeeksTracked < a.MinWeeks {
		return out
	}

	latest, _ := LatestMeasurement(history)
	energy := ComputeTargets(ProjectProfile(profile, latest), goal, level, a.Energy)
	y, m, d := now.Date()
	out.Recalculated = true
	out.Energy = &energy
	out.Event = &TargetsChanged{
		EffectiveFrom: time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		Target:        energy.Target,
		Reason: fmt.Sprintf("check-in: weight %+.1f kg over %d weeks",
			out.Changes.WeightChangeKg, out.Changes.WeeksTracked),
	}
	return out
}
