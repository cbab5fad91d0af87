package catalog

import (
	"math"
	"testing"
)

func TestParseDurationHours(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45 min", 0.75},
		{"2 horas", 2},
		{"2h 30min", 2.5},
		{"1 hora 30 minutos", 1.5},
		{"90 minutos", 1.5},
		{"1.5 hours", 1.5},
		{"1,5 horas", 1.5},
		{"1h30", 1.5},
		{"1:15", 1.25},
		{"0:45:00", 0.75},
		{"3600 seg", 1},
		{"  2 HRS ", 2},
		{"", 0},
		{"unknown", 0},
		{"12", 0},
		{"12 pages", 0},
	}
	for _, tc := range cases {
		got := ParseDurationHours(tc.in)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseDurationHours(%q): want=%v got=%v", tc.in, tc.want, got)
		}
	}
}
