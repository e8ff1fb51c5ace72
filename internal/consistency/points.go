package consistency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pfrederiksen/bref-boxscores/internal/boxscore"
)

const (
	// PointsStat is the stat label of a row's points.
	PointsStat = "pts"

	// DefaultRelTol is the relative tolerance used when a Checker leaves RelTol at zero.
	DefaultRelTol = 1e-5
	// DefaultAbsTol is the absolute tolerance used when a Checker leaves AbsTol at zero.
	DefaultAbsTol = 1e-8
)

// GroupKey identifies one team within one game.
type GroupKey struct {
	GameID string
	Team   string
}

func (k GroupKey) String() string {
	return k.GameID + "/" + k.Team
}

// MissingTotalsRowError reports a team with player rows but no totals row.
type MissingTotalsRowError struct {
	Group GroupKey
}

func (e *MissingTotalsRowError) Error() string {
	return fmt.Sprintf("no totals row for %s", e.Group)
}

// NonNumericStatError reports a stat value that is not a finite number.
type NonNumericStatError struct {
	Group  GroupKey
	Player string
	Stat   string
	Value  string
	Err    error
}

func (e *NonNumericStatError) Error() string {
	return fmt.Sprintf("%s: %s of %q is not a number: %q", e.Group, e.Stat, e.Player, e.Value)
}

func (e *NonNumericStatError) Unwrap() error {
	return e.Err
}

// GroupResult is the comparison for one team in one game.
type GroupResult struct {
	Key      GroupKey
	Summed   float64
	Reported float64
	OK       bool
}

// Report holds every group's comparison, sorted by game id then team.
type Report struct {
	Groups []GroupResult
	OK     bool
}

// Failed returns the groups whose sums disagree.
func (r *Report) Failed() []GroupResult {
	failed := make([]GroupResult, 0)
	for _, g := range r.Groups {
		if !g.OK {
			failed = append(failed, g)
		}
	}
	return failed
}

// Checker compares summed player values of Stat with the totals row.
type Checker struct {
	Stat     string
	IsTotals func(boxscore.StatRecord) bool
	RelTol   float64
	AbsTol   float64
}

// DefaultChecker checks "pts" against the "Team Totals" rows.
func DefaultChecker() Checker {
	return Checker{
		Stat:     PointsStat,
		IsTotals: boxscore.NamedBoundary(boxscore.SentinelName),
		RelTol:   DefaultRelTol,
		AbsTol:   DefaultAbsTol,
	}
}

var (
	errNotReported = errors.New("stat not reported")
	errNotFinite   = errors.New("value is not finite")
)

type groupSums struct {
	summed    float64
	reported  float64
	hasTotals bool
}

// Check groups rows by game and team and compares the summed player values
// with the totals row of each group. Player rows without the stat do not
// contribute. A group without a totals row, or any present but unparseable
// value (blank included), fails the whole check with an error. Zero
// tolerances fall back to the defaults.
func (c Checker) Check(rows []boxscore.Row) (*Report, error) {
	if c.IsTotals == nil {
		c.IsTotals = boxscore.NamedBoundary(boxscore.SentinelName)
	}
	if c.Stat == "" {
		c.Stat = PointsStat
	}
	if c.RelTol <= 0 {
		c.RelTol = DefaultRelTol
	}
	if c.AbsTol <= 0 {
		c.AbsTol = DefaultAbsTol
	}

	groups := make(map[GroupKey]*groupSums)
	keys := make([]GroupKey, 0)

	for _, r := range rows {
		key := GroupKey{GameID: r.GameID, Team: r.Team}
		g, ok := groups[key]
		if !ok {
			g = &groupSums{}
			groups[key] = g
			keys = append(keys, key)
		}

		raw, present := r.Get(c.Stat)
		isTotals := c.IsTotals(r.StatRecord)

		if isTotals {
			v, err := c.parse(key, r.Name, raw, present)
			if err != nil {
				return nil, err
			}
			g.reported += v
			g.hasTotals = true
			continue
		}

		if !present {
			continue
		}
		v, err := c.parse(key, r.Name, raw, true)
		if err != nil {
			return nil, err
		}
		g.summed += v
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].GameID != keys[j].GameID {
			return keys[i].GameID < keys[j].GameID
		}
		return keys[i].Team < keys[j].Team
	})

	report := &Report{Groups: make([]GroupResult, 0, len(keys)), OK: true}
	for _, key := range keys {
		g := groups[key]
		if !g.hasTotals {
			return nil, &MissingTotalsRowError{Group: key}
		}
		ok := c.approxEqual(g.summed, g.reported)
		report.Groups = append(report.Groups, GroupResult{
			Key:      key,
			Summed:   g.summed,
			Reported: g.reported,
			OK:       ok,
		})
		if !ok {
			report.OK = false
		}
	}

	return report, nil
}

func (c Checker) parse(key GroupKey, player, raw string, present bool) (float64, error) {
	if !present {
		return 0, &NonNumericStatError{Group: key, Player: player, Stat: c.Stat, Value: raw, Err: errNotReported}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &NonNumericStatError{Group: key, Player: player, Stat: c.Stat, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &NonNumericStatError{Group: key, Player: player, Stat: c.Stat, Value: raw, Err: errNotFinite}
	}
	return v, nil
}

// approxEqual is the approximate equality |a-b| <= abs + rel*|b|.
func (c Checker) approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= c.AbsTol+c.RelTol*math.Abs(b)
}

// CheckPointsConsistent reports whether every team's summed player points
// match its totals row, using DefaultChecker.
func CheckPointsConsistent(rows []boxscore.Row) (bool, error) {
	report, err := DefaultChecker().Check(rows)
	if err != nil {
		return false, err
	}
	return report.OK, nil
}
