// Package milestone decides which elapsed day counts are worth announcing.
//
// A day count is a milestone when it is a positive multiple of 100, a
// positive multiple of 1000, or a member of the configured fun-number set,
// with each rule individually toggleable. The package is pure: no clocks,
// no IO, same answer for the same inputs.
package milestone

import "sort"

// Rules describes which day counts notify.
type Rules struct {
	Every100   bool
	Every1000  bool
	FunEnabled bool
	FunNumbers []int
}

// DefaultFunNumbers returns the built-in fun-number set: repeated digits,
// straights, and other day counts people like to celebrate.
func DefaultFunNumbers() []int {
	return []int{
		111, 222, 333, 444, 555, 666, 777, 888, 999,
		1010, 1111, 1234, 1313, 1414, 1515,
		2020, 2222, 2345, 2468,
		3000, 3333, 3456, 4321, 4444,
		5000, 5555, 6000, 6666, 7000, 7777,
		8000, 8888, 9000, 9999,
	}
}

// DefaultRules returns all rules enabled with the built-in fun numbers.
func DefaultRules() Rules {
	return Rules{
		Every100:   true,
		Every1000:  true,
		FunEnabled: true,
		FunNumbers: DefaultFunNumbers(),
	}
}

// IsMilestone reports whether day count d is notable under the rules.
// Day zero is never a milestone.
func (r Rules) IsMilestone(d int) bool {
	if d <= 0 {
		return false
	}
	if r.Every100 && d%100 == 0 {
		return true
	}
	if r.Every1000 && d%1000 == 0 {
		return true
	}
	if r.FunEnabled {
		for _, n := range r.FunNumbers {
			if n == d {
				return true
			}
		}
	}
	return false
}

// Pending returns every milestone up to and including day count d that the
// notified predicate does not already cover, ascending. A poll gap of any
// length therefore surfaces all skipped milestones, not just the latest.
func (r Rules) Pending(d int, notified func(int) bool) []int {
	if d <= 0 {
		return nil
	}
	candidates := make(map[int]struct{})
	if r.Every100 {
		for m := 100; m <= d; m += 100 {
			candidates[m] = struct{}{}
		}
	}
	if r.Every1000 {
		for m := 1000; m <= d; m += 1000 {
			candidates[m] = struct{}{}
		}
	}
	if r.FunEnabled {
		for _, n := range r.FunNumbers {
			if n > 0 && n <= d {
				candidates[n] = struct{}{}
			}
		}
	}

	pending := make([]int, 0, len(candidates))
	for m := range candidates {
		if notified != nil && notified(m) {
			continue
		}
		pending = append(pending, m)
	}
	sort.Ints(pending)
	return pending
}

// Next returns the smallest milestone strictly greater than day count d,
// or false when every rule is disabled. Negative day counts (start in the
// future) are treated as zero.
func (r Rules) Next(d int) (int, bool) {
	if d < 0 {
		d = 0
	}
	next := 0
	consider := func(candidate int) {
		if candidate <= d {
			return
		}
		if next == 0 || candidate < next {
			next = candidate
		}
	}
	if r.Every100 {
		consider((d/100 + 1) * 100)
	}
	if r.Every1000 {
		consider((d/1000 + 1) * 1000)
	}
	if r.FunEnabled {
		for _, n := range r.FunNumbers {
			consider(n)
		}
	}
	if next == 0 {
		return 0, false
	}
	return next, true
}
