// Package scoring converts finishing places into league points.
package scoring

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrInvalidPlace = errors.New("place must be a positive integer")
	ErrInvalidTable = errors.New("invalid points table")
)

// DefaultPlacementPoints is awarded to every place not covered by a tier.
const DefaultPlacementPoints = 30

// Tier awards Points to every place in [From, To].
type Tier struct {
	From   int
	To     int
	Points int
}

// Table maps places to points. The zero value awards Default (or
// DefaultPlacementPoints when Default is zero) to every place.
type Table struct {
	Tiers   []Tier
	Default int
}

// DefaultTable returns the stock season table: 1:300, 2:240, 3:195, 4-5:150, 6-10:90.
func DefaultTable() Table {
	return Table{
		Tiers: []Tier{
			{From: 1, To: 1, Points: 300},
			{From: 2, To: 2, Points: 240},
			{From: 3, To: 3, Points: 195},
			{From: 4, To: 5, Points: 150},
			{From: 6, To: 10, Points: 90},
		},
		Default: DefaultPlacementPoints,
	}
}

// Points returns the points for a finishing place.
func (t Table) Points(place int) (int, error) {
	if place <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPlace, place)
	}
	for _, tier := range t.Tiers {
		if place >= tier.From && place <= tier.To {
			return tier.Points, nil
		}
	}
	if t.Default > 0 {
		return t.Default, nil
	}
	return DefaultPlacementPoints, nil
}

// ParseTable parses the "1:300,2:240,4-5:150" form. Ranges must not overlap.
func ParseTable(s string) (Table, error) {
	table := Table{Default: DefaultPlacementPoints}
	s = strings.TrimSpace(s)
	if s == "" {
		return table, fmt.Errorf("%w: empty", ErrInvalidTable)
	}

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		placesPart, pointsPart, ok := strings.Cut(item, ":")
		if !ok {
			return Table{}, fmt.Errorf("%w: %q lacks ':'", ErrInvalidTable, item)
		}
		points, err := strconv.Atoi(strings.TrimSpace(pointsPart))
		if err != nil || points < 0 {
			return Table{}, fmt.Errorf("%w: bad points in %q", ErrInvalidTable, item)
		}

		fromPart, toPart, isRange := strings.Cut(placesPart, "-")
		from, err := strconv.Atoi(strings.TrimSpace(fromPart))
		if err != nil || from <= 0 {
			return Table{}, fmt.Errorf("%w: bad place in %q", ErrInvalidTable, item)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(toPart))
			if err != nil || to < from {
				return Table{}, fmt.Errorf("%w: bad range in %q", ErrInvalidTable, item)
			}
		}
		table.Tiers = append(table.Tiers, Tier{From: from, To: to, Points: points})
	}

	slices.SortFunc(table.Tiers, func(a, b Tier) int { return cmp.Compare(a.From, b.From) })
	for i := 1; i < len(table.Tiers); i++ {
		if table.Tiers[i].From <= table.Tiers[i-1].To {
			return Table{}, fmt.Errorf("%w: places %d-%d overlap", ErrInvalidTable, table.Tiers[i].From, table.Tiers[i-1].To)
		}
	}
	return table, nil
}

// String renders the table back into its text form.
func (t Table) String() string {
	parts := make([]string, 0, len(t.Tiers))
	for _, tier := range t.Tiers {
		if tier.From == tier.To {
			parts = append(parts, fmt.Sprintf("%d:%d", tier.From, tier.Points))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d:%d", tier.From, tier.To, tier.Points))
		}
	}
	return strings.Join(parts, ",")
}

// UnmarshalText lets the table be read straight from the environment.
func (t *Table) UnmarshalText(text []byte) error {
	parsed, err := ParseTable(string(text))
	if err != nil {
		return err
	}
	if t.Default > 0 {
		parsed.Default = t.Default
	}
	*t = parsed
	return nil
}
