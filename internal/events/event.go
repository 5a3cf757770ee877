package events

import (
	"sort"
	"time"

	"daycounter/internal/timefmt"
)

// Event is a tracked start timestamp with a user-given name. Notified holds
// the day counts already announced, sorted ascending.
type Event struct {
	Name     string
	Start    time.Time
	Enabled  bool
	Notified []int
}

// Days returns the whole days elapsed since the event started, negative when
// the start lies in the future.
func (e Event) Days(now time.Time) int {
	return timefmt.WholeDays(e.Start, now)
}

// HasNotified reports whether the given day count was already announced.
func (e Event) HasNotified(day int) bool {
	i := sort.SearchInts(e.Notified, day)
	return i < len(e.Notified) && e.Notified[i] == day
}

// Clone returns a copy that shares no state with the receiver.
func (e Event) Clone() Event {
	clone := e
	if len(e.Notified) > 0 {
		clone.Notified = append([]int(nil), e.Notified...)
	}
	return clone
}

// eventRecord is the persisted wire form of an Event.
type eventRecord struct {
	Name               string `json:"name"`
	StartISO8601       string `json:"start_iso8601"`
	Enabled            *bool  `json:"enabled,omitempty"`
	NotifiedMilestones []int  `json:"notified_milestones"`
}

func recordFromEvent(e Event) eventRecord {
	enabled := e.Enabled
	notified := e.Notified
	if notified == nil {
		notified = []int{}
	}
	return eventRecord{
		Name:               e.Name,
		StartISO8601:       e.Start.Format(time.RFC3339Nano),
		Enabled:            &enabled,
		NotifiedMilestones: notified,
	}
}

func (r eventRecord) toEvent() (Event, error) {
	start, err := time.Parse(time.RFC3339Nano, r.StartISO8601)
	if err != nil {
		return Event{}, err
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	notified := append([]int(nil), r.NotifiedMilestones...)
	sort.Ints(notified)
	notified = dedupeSorted(notified)
	return Event{
		Name:     r.Name,
		Start:    start,
		Enabled:  enabled,
		Notified: notified,
	}, nil
}

func dedupeSorted(values []int) []int {
	if len(values) < 2 {
		return values
	}
	out := values[:1]
	for _, v := range values[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
