package service

import (
	"testing"
	"time"

	"roomdisplay/modules/room/entity"
)

func minuteInterval(t *testing.T, startMin, endMin int) Interval {
	t.Helper()
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return Interval{
		Start: base.Add(time.Duration(startMin) * time.Minute),
		End:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b [2]int
		want bool
	}{
		{"disjoint", [2]int{0, 10}, [2]int{20, 30}, false},
		{"touching endpoints do not conflict", [2]int{0, 10}, [2]int{10, 20}, false},
		{"partial overlap", [2]int{0, 10}, [2]int{9, 20}, true},
		{"contained", [2]int{0, 60}, [2]int{15, 30}, true},
		{"identical", [2]int{5, 15}, [2]int{5, 15}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := minuteInterval(t, tc.a[0], tc.a[1])
			b := minuteInterval(t, tc.b[0], tc.b[1])
			if got := Overlaps(a, b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(b, a); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestFindConflictExcludesExtendedAppointment(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	busy := []entity.Appointment{
		{ID: "meeting-1", Start: base, End: base.Add(time.Hour)},
		{ID: "meeting-2", Start: base.Add(80 * time.Minute), End: base.Add(2 * time.Hour)},
	}

	// The tail of extending meeting-1 by 30 minutes.
	tail := Interval{Start: base.Add(time.Hour), End: base.Add(90 * time.Minute)}

	hit := FindConflict(tail, busy, "meeting-1")
	if hit == nil {
		t.Fatal("expected conflict with meeting-2")
	}
	if hit.ID != "meeting-2" {
		t.Fatalf("conflicting appointment = %q, want meeting-2", hit.ID)
	}

	// Without the other appointment the tail is free; the extended
	// appointment itself must never count.
	if hit := FindConflict(tail, busy[:1], "meeting-1"); hit != nil {
		t.Fatalf("unexpected conflict with %q", hit.ID)
	}
}

func TestCrossesEndOfDay(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, loc)

	if CrossesEndOfDay(start, time.Date(2025, 3, 10, 23, 30, 0, 0, loc)) {
		t.Fatal("23:30 same day should not cross the boundary")
	}
	if !CrossesEndOfDay(start, time.Date(2025, 3, 11, 0, 15, 0, 0, loc)) {
		t.Fatal("00:15 next day must cross the boundary")
	}
	if !CrossesEndOfDay(start, time.Date(2025, 3, 11, 0, 0, 0, 0, loc)) {
		t.Fatal("midnight next day must cross the boundary")
	}
}
