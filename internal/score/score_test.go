package score

import (
	"testing"

	"github.com/abhisek/rendermark/internal/compare"
)

func TestAggregateEqual(t *testing.T) {
	tests := []struct {
		name   string
		visual float64
		want   int
	}{
		{"perfect visual earns bonus and clamps", 1.0, 100},
		{"near-perfect visual earns bonus", 0.95, 100},
		{"visual at threshold gets no bonus", 0.9, 97},
		{"moderate visual", 0.5, 85},
		{"no visual credit", 0.0, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compare.Result{Equal: true}
			if got := Aggregate(result, tt.visual); got != tt.want {
				t.Errorf("Aggregate(equal, %v) = %d, want %d", tt.visual, got, tt.want)
			}
		})
	}
}

func TestAggregatePenalties(t *testing.T) {
	tests := []struct {
		name   string
		diffs  []compare.Diff
		visual float64
		want   int
	}{
		{
			name:   "one high diff",
			diffs:  []compare.Diff{{Severity: compare.SeverityHigh}},
			visual: 0.6,
			want:   68, // 70 - 20 + 18
		},
		{
			name: "mixed severities",
			diffs: []compare.Diff{
				{Severity: compare.SeverityHigh},
				{Severity: compare.SeverityMedium},
				{Severity: compare.SeverityLow},
			},
			visual: 0.5,
			want:   50, // 70 - 35 + 15
		},
		{
			name: "structural floor at zero",
			diffs: []compare.Diff{
				{Severity: compare.SeverityHigh},
				{Severity: compare.SeverityHigh},
				{Severity: compare.SeverityHigh},
				{Severity: compare.SeverityHigh},
			},
			visual: 0.5,
			want:   15, // structural clamps to 0, visual survives
		},
		{
			name:   "total floor at zero",
			diffs:  []compare.Diff{{Severity: compare.SeverityHigh}, {Severity: compare.SeverityHigh}, {Severity: compare.SeverityHigh}, {Severity: compare.SeverityHigh}},
			visual: 0.0,
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compare.Result{Equal: false, Diffs: tt.diffs}
			if got := Aggregate(result, tt.visual); got != tt.want {
				t.Errorf("Aggregate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregateUnequalGetsNoBonus(t *testing.T) {
	result := compare.Result{Equal: false, Diffs: []compare.Diff{{Severity: compare.SeverityLow}}}
	if got := Aggregate(result, 1.0); got != 95 {
		t.Errorf("Aggregate(unequal, 1.0) = %d, want 95", got)
	}
}

func TestAggregateMonotonicInVisual(t *testing.T) {
	result := compare.Result{Equal: false, Diffs: []compare.Diff{{Severity: compare.SeverityMedium}}}
	prev := -1
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		got := Aggregate(result, v)
		if got < prev {
			t.Errorf("score decreased from %d to %d as visual ratio rose to %v", prev, got, v)
		}
		if got < 0 || got > 100 {
			t.Errorf("score out of range: %d", got)
		}
		prev = got
	}
}
