package campaign

import (
	"fmt"
	"hash/fnv"
)

// DaysPerYear is the simulation calendar length. The calendar is flat:
// a year is a run of numbered days, no months.
const DaysPerYear = 360

// Date is an in-simulation day. Day is 1-based within the year.
type Date struct {
	Year int `json:"year"`
	Day  int `json:"day"`
}

// String renders the date in the canonical "3042-112" form used for
// seeding and persistence. The rendering is what makes selection
// deterministic per date, so it must never change shape.
func (d Date) String() string {
	return fmt.Sprintf("%d-%03d", d.Year, d.Day)
}

// Next returns the following day, rolling the year when needed.
func (d Date) Next() Date {
	d.Day++
	if d.Day > DaysPerYear {
		d.Day = 1
		d.Year++
	}
	return d
}

// Ordinal returns the absolute day number, usable as a smooth noise input.
func (d Date) Ordinal() int64 {
	return int64(d.Year)*DaysPerYear + int64(d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Day == 0
}

// Seed derives a deterministic rng seed from the date and a scope
// label. The same (date, scope) pair always yields the same seed;
// distinct dates spread across the seed space. Scopes keep the
// selection shuffle and the mechanics rolls on independent streams.
func (d Date) Seed(scope string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%s", d.String(), scope)
	return int64(h.Sum64())
}
