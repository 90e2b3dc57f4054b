package prayer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var mvt = time.FixedZone("MVT", 5*3600)

// sampleRow is a typical Malé day: 05:01, 06:17, 12:15, 15:34, 18:05, 19:23.
func sampleRow() Row {
	return Row{
		CategoryID: 1,
		DayIndex:   100,
		Fajr:       301,
		Sunrise:    377,
		Dhuhr:      735,
		Asr:        934,
		Maghrib:    1085,
		Isha:       1163,
	}
}

func sampleDay() time.Time {
	return time.Date(2025, time.April, 10, 0, 0, 0, 0, mvt)
}

func TestKindOrderAndCycle(t *testing.T) {
	want := []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}
	for i, k := range Kinds {
		if k.String() != want[i] {
			t.Errorf("Kinds[%d] = %s, want %s", i, k, want[i])
		}
	}
	if Isha.Next() != Fajr {
		t.Errorf("expected Isha.Next() == Fajr, got %s", Isha.Next())
	}
	if Fajr.Prev() != Isha {
		t.Errorf("expected Fajr.Prev() == Isha, got %s", Fajr.Prev())
	}
	if Dhuhr.Next() != Asr {
		t.Errorf("expected Dhuhr.Next() == Asr, got %s", Dhuhr.Next())
	}
	if None.Valid() || None.Next() != None {
		t.Errorf("None must not be a prayer")
	}
}

func TestKindText(t *testing.T) {
	b, err := json.Marshal(struct {
		K Kind `json:"k"`
		N Kind `json:"n"`
	}{K: Maghrib})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"k":"maghrib","n":""}` {
		t.Fatalf("unexpected json: %s", b)
	}
	var k Kind
	if err := k.UnmarshalText([]byte("ASR")); err != nil || k != Asr {
		t.Fatalf("expected Asr, got %s (%v)", k, err)
	}
	if _, err := ParseKind("tahajjud"); err == nil {
		t.Fatal("expected error for unknown prayer")
	}
}

func TestRowClockAndValidate(t *testing.T) {
	r := sampleRow()
	if got := r.Clock(Fajr); got != "05:01" {
		t.Errorf("expected 05:01, got %s", got)
	}
	if got := r.Clock(Isha); got != "19:23" {
		t.Errorf("expected 19:23, got %s", got)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Asr = 1440
	if err := r.Validate(); !errors.Is(err, ErrInvalidRow) {
		t.Fatalf("expected ErrInvalidRow, got %v", err)
	}
	r = sampleRow()
	r.DayIndex = 366
	if err := r.Validate(); !errors.Is(err, ErrInvalidRow) {
		t.Fatalf("expected ErrInvalidRow for index, got %v", err)
	}
}

func TestOccurrences(t *testing.T) {
	occs := Occurrences(sampleRow(), sampleDay())
	if len(occs) != 7 {
		t.Fatalf("expected 7 occurrences, got %d", len(occs))
	}
	for i, k := range Kinds {
		if occs[i].Kind != k {
			t.Errorf("occurrence %d: expected %s, got %s", i, k, occs[i].Kind)
		}
	}
	if want := time.Date(2025, time.April, 10, 5, 1, 0, 0, mvt); !occs[0].At.Equal(want) {
		t.Errorf("fajr: got %v, want %v", occs[0].At, want)
	}
	last := occs[6]
	if last.Kind != Fajr {
		t.Fatalf("expected synthetic Fajr, got %s", last.Kind)
	}
	if want := time.Date(2025, time.April, 11, 5, 1, 0, 0, mvt); !last.At.Equal(want) {
		t.Errorf("tomorrow fajr: got %v, want %v", last.At, want)
	}
	for i := 1; i < len(occs); i++ {
		if !occs[i].At.After(occs[i-1].At) {
			t.Errorf("occurrence %d is not after %d", i, i-1)
		}
	}
}

func TestOccurrencesMonthEnd(t *testing.T) {
	day := time.Date(2025, time.December, 31, 0, 0, 0, 0, mvt)
	occs := Occurrences(sampleRow(), day)
	if want := time.Date(2026, time.January, 1, 5, 1, 0, 0, mvt); !occs[6].At.Equal(want) {
		t.Fatalf("expected %v, got %v", want, occs[6].At)
	}
}

func TestLocate(t *testing.T) {
	row := sampleRow()
	day := sampleDay()
	occs := Occurrences(row, day)

	tests := []struct {
		name          string
		now           time.Time
		wantCurrent   Kind
		wantUpcoming  Kind
		wantRemaining time.Duration
	}{
		{
			name:          "one minute after dhuhr",
			now:           At(day, row.Dhuhr).Add(time.Minute),
			wantCurrent:   Dhuhr,
			wantUpcoming:  Asr,
			wantRemaining: At(day, row.Asr).Sub(At(day, row.Dhuhr).Add(time.Minute)),
		},
		{
			name:          "two minutes before fajr wraps to isha",
			now:           At(day, row.Fajr).Add(-2 * time.Minute),
			wantCurrent:   Isha,
			wantUpcoming:  Fajr,
			wantRemaining: 2 * time.Minute,
		},
		{
			name:          "just after isha",
			now:           At(day, row.Isha).Add(time.Second),
			wantCurrent:   Isha,
			wantUpcoming:  Fajr,
			wantRemaining: time.Date(2025, time.April, 11, 5, 1, 0, 0, mvt).Sub(At(day, row.Isha).Add(time.Second)),
		},
		{
			name:          "exactly at asr counts asr as current",
			now:           At(day, row.Asr),
			wantCurrent:   Asr,
			wantUpcoming:  Maghrib,
			wantRemaining: time.Duration(row.Maghrib-row.Asr) * time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := Locate(occs, tt.now)
			if !ok {
				t.Fatal("expected a position")
			}
			if pos.Current != tt.wantCurrent {
				t.Errorf("current: got %s, want %s", pos.Current, tt.wantCurrent)
			}
			if pos.Upcoming != tt.wantUpcoming {
				t.Errorf("upcoming: got %s, want %s", pos.Upcoming, tt.wantUpcoming)
			}
			if pos.Remaining != tt.wantRemaining {
				t.Errorf("remaining: got %v, want %v", pos.Remaining, tt.wantRemaining)
			}
			if pos.Remaining <= 0 {
				t.Errorf("remaining must be positive, got %v", pos.Remaining)
			}
		})
	}
}

func TestLocatePastEverything(t *testing.T) {
	occs := Occurrences(sampleRow(), sampleDay())
	if _, ok := Locate(occs, sampleDay().AddDate(0, 0, 3)); ok {
		t.Fatal("expected no position after the last occurrence")
	}
	if _, ok := Locate(nil, sampleDay()); ok {
		t.Fatal("expected no position for an empty sequence")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59 * time.Second, "00:59"},
		{2*time.Minute + 500*time.Millisecond, "02:01"},
		{time.Hour, "1:00:00"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3:04:05"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
