package milestone_test

import (
	"testing"

	"daycounter/internal/milestone"
)

func TestIsMilestone(t *testing.T) {
	rules := milestone.DefaultRules()

	cases := []struct {
		name string
		day  int
		want bool
	}{
		{"zero is never a milestone", 0, false},
		{"negative", -100, false},
		{"plain day", 57, false},
		{"first hundred", 100, true},
		{"multiple of 100", 700, true},
		{"thousand", 1000, true},
		{"fun number", 1234, true},
		{"repeated digits", 7777, true},
		{"off by one", 101, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.IsMilestone(tc.day); got != tc.want {
				t.Fatalf("IsMilestone(%d) = %v, want %v", tc.day, got, tc.want)
			}
		})
	}
}

func TestIsMilestoneDeterministic(t *testing.T) {
	rules := milestone.DefaultRules()
	for d := 0; d <= 2000; d++ {
		first := rules.IsMilestone(d)
		second := rules.IsMilestone(d)
		if first != second {
			t.Fatalf("IsMilestone(%d) not deterministic", d)
		}
	}
}

func TestIsMilestoneRespectsToggles(t *testing.T) {
	rules := milestone.Rules{Every1000: true}
	if rules.IsMilestone(100) {
		t.Fatal("100 should not fire with every_100 disabled")
	}
	if !rules.IsMilestone(1000) {
		t.Fatal("1000 should fire with every_1000 enabled")
	}
	if rules.IsMilestone(1234) {
		t.Fatal("fun numbers should not fire when disabled")
	}

	rules = milestone.Rules{FunEnabled: true, FunNumbers: []int{42}}
	if !rules.IsMilestone(42) {
		t.Fatal("custom fun number should fire")
	}
	if rules.IsMilestone(100) {
		t.Fatal("100 should not fire with multiples disabled")
	}
}

func TestPendingReturnsSkippedRangeOnce(t *testing.T) {
	rules := milestone.DefaultRules()
	notified := map[int]bool{100: true, 111: true}

	pending := rules.Pending(450, func(d int) bool { return notified[d] })

	want := []int{200, 222, 300, 333, 400, 444}
	if len(pending) != len(want) {
		t.Fatalf("pending = %v, want %v", pending, want)
	}
	for i, m := range want {
		if pending[i] != m {
			t.Fatalf("pending = %v, want %v", pending, want)
		}
	}
}

func TestPendingEmptyCases(t *testing.T) {
	rules := milestone.DefaultRules()
	if got := rules.Pending(0, nil); len(got) != 0 {
		t.Fatalf("expected no milestones at day 0, got %v", got)
	}
	if got := rules.Pending(-3, nil); len(got) != 0 {
		t.Fatalf("expected no milestones for future start, got %v", got)
	}
	if got := rules.Pending(99, nil); len(got) != 0 {
		t.Fatalf("expected no milestones before day 100, got %v", got)
	}
}

func TestPendingIdempotentUnderSubDayPolling(t *testing.T) {
	rules := milestone.DefaultRules()
	notified := map[int]bool{}
	seen := func(d int) bool { return notified[d] }

	// Repeated polls at the same day count: only the first emits.
	first := rules.Pending(200, seen)
	if len(first) != 3 { // 100, 111, 200
		t.Fatalf("first poll = %v", first)
	}
	for _, m := range first {
		notified[m] = true
	}
	for poll := 0; poll < 5; poll++ {
		if again := rules.Pending(200, seen); len(again) != 0 {
			t.Fatalf("poll %d re-emitted %v", poll, again)
		}
	}
}

func TestDailyPollingFiresEachMilestoneExactlyOnce(t *testing.T) {
	rules := milestone.DefaultRules()
	fired := map[int]int{}
	notified := map[int]bool{}

	for day := 0; day <= 1000; day++ {
		for _, m := range rules.Pending(day, func(d int) bool { return notified[d] }) {
			fired[m]++
			notified[m] = true
		}
	}

	for m := 100; m <= 1000; m += 100 {
		if fired[m] != 1 {
			t.Fatalf("milestone %d fired %d times", m, fired[m])
		}
	}
	for _, n := range milestone.DefaultFunNumbers() {
		if n > 1000 {
			continue
		}
		if fired[n] != 1 {
			t.Fatalf("fun number %d fired %d times", n, fired[n])
		}
	}
	for m, count := range fired {
		if count != 1 {
			t.Fatalf("milestone %d fired %d times", m, count)
		}
		if !rules.IsMilestone(m) {
			t.Fatalf("non-milestone %d fired", m)
		}
	}
}

func TestNext(t *testing.T) {
	rules := milestone.DefaultRules()

	cases := []struct {
		day  int
		want int
	}{
		{0, 100},
		{99, 100},
		{100, 111},
		{115, 200},
		{999, 1000},
		{1000, 1010},
		{-5, 100},
		{9999, 10000},
	}
	for _, tc := range cases {
		got, ok := rules.Next(tc.day)
		if !ok {
			t.Fatalf("Next(%d) reported no milestone", tc.day)
		}
		if got != tc.want {
			t.Fatalf("Next(%d) = %d, want %d", tc.day, got, tc.want)
		}
	}
}

func TestNextWithAllRulesDisabled(t *testing.T) {
	if _, ok := (milestone.Rules{}).Next(50); ok {
		t.Fatal("expected no next milestone with every rule disabled")
	}
}

func TestNextThousandOnlyRule(t *testing.T) {
	rules := milestone.Rules{Every1000: true}
	got, ok := rules.Next(150)
	if !ok || got != 1000 {
		t.Fatalf("Next(150) = %d/%v, want 1000", got, ok)
	}
}
