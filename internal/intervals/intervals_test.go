package intervals

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Test union merge behavior
func TestUnion(t *testing.T) {
	tests := []struct {
		name     string
		input    []Interval
		expected []Interval
	}{
		{
			name:     "empty input",
			input:    []Interval{},
			expected: []Interval{},
		},
		{
			name:     "single interval",
			input:    []Interval{{480, 1200}},
			expected: []Interval{{480, 1200}},
		},
		{
			name:     "disjoint intervals stay separate",
			input:    []Interval{{480, 600}, {700, 800}},
			expected: []Interval{{480, 600}, {700, 800}},
		},
		{
			name:     "overlapping intervals merge",
			input:    []Interval{{480, 600}, {540, 700}},
			expected: []Interval{{480, 700}},
		},
		{
			name:     "touching endpoints merge",
			input:    []Interval{{480, 600}, {600, 700}},
			expected: []Interval{{480, 700}},
		},
		{
			name:     "contained interval absorbed",
			input:    []Interval{{480, 1200}, {600, 700}},
			expected: []Interval{{480, 1200}},
		},
		{
			name:     "unsorted input sorts first",
			input:    []Interval{{700, 800}, {480, 600}},
			expected: []Interval{{480, 600}, {700, 800}},
		},
		{
			name:     "chain of overlaps collapses to one",
			input:    []Interval{{0, 100}, {90, 200}, {190, 300}},
			expected: []Interval{{0, 300}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Union(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("Union() = %v, expected %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Union()[%d] = %v, expected %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

// Test step-aligned interval subtraction
func TestSubtract(t *testing.T) {
	tests := []struct {
		name     string
		a        []Interval
		b        []Interval
		step     int
		expected []Interval
	}{
		{
			name:     "empty subtrahend leaves a unchanged",
			a:        []Interval{{480, 1200}},
			b:        []Interval{},
			step:     30,
			expected: []Interval{{480, 1200}},
		},
		{
			name:     "empty minuend yields empty",
			a:        []Interval{},
			b:        []Interval{{480, 600}},
			step:     30,
			expected: []Interval{},
		},
		{
			name:     "middle block splits with step margins",
			a:        []Interval{{480, 1200}},
			b:        []Interval{{600, 660}},
			step:     30,
			expected: []Interval{{480, 570}, {690, 1200}},
		},
		{
			name:     "block covering the whole interval removes it",
			a:        []Interval{{480, 600}},
			b:        []Interval{{400, 700}},
			step:     30,
			expected: []Interval{},
		},
		{
			name:     "prefix block resumes past its end",
			a:        []Interval{{480, 1200}},
			b:        []Interval{{400, 510}},
			step:     30,
			expected: []Interval{{540, 1200}},
		},
		{
			name:     "suffix block trims the tail",
			a:        []Interval{{480, 1200}},
			b:        []Interval{{1100, 1300}},
			step:     30,
			expected: []Interval{{480, 1070}},
		},
		{
			name:     "non-overlapping block has no effect",
			a:        []Interval{{480, 600}},
			b:        []Interval{{700, 800}},
			step:     30,
			expected: []Interval{{480, 600}},
		},
		{
			name:     "two blocks split one interval into three",
			a:        []Interval{{0, 1000}},
			b:        []Interval{{100, 200}, {500, 600}},
			step:     15,
			expected: []Interval{{0, 85}, {215, 485}, {615, 1000}},
		},
		{
			name:     "adjacent blocks with no gap wide enough drop the fragment",
			a:        []Interval{{0, 200}},
			b:        []Interval{{0, 90}, {100, 200}},
			step:     30,
			expected: []Interval{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Subtract(tt.a, tt.b, tt.step)
			if len(result) != len(tt.expected) {
				t.Fatalf("Subtract() = %v, expected %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Subtract()[%d] = %v, expected %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

// Test containment endpoints
func TestContains(t *testing.T) {
	iv := Interval{480, 600}
	tests := []struct {
		m        int
		expected bool
	}{
		{479, false},
		{480, true},
		{540, true},
		{600, true},
		{601, false},
	}
	for _, tt := range tests {
		if got := iv.Contains(tt.m); got != tt.expected {
			t.Errorf("Contains(%d) = %v, expected %v", tt.m, got, tt.expected)
		}
	}
}

// Property-based test: union is idempotent and produces sorted, disjoint output
func TestUnion_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	makeIntervals := func(starts []int, width int) []Interval {
		ivs := make([]Interval, 0, len(starts))
		for _, s := range starts {
			ivs = append(ivs, Interval{Start: s, End: s + width})
		}
		return ivs
	}

	properties.Property("union output is sorted and disjoint", prop.ForAll(
		func(starts []int, width int) bool {
			result := Union(makeIntervals(starts, width))
			for i := 1; i < len(result); i++ {
				if result[i].Start <= result[i-1].End {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1440)),
		gen.IntRange(0, 240),
	))

	properties.Property("union is idempotent", prop.ForAll(
		func(starts []int, width int) bool {
			once := Union(makeIntervals(starts, width))
			twice := Union(once)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1440)),
		gen.IntRange(0, 240),
	))

	properties.Property("union covers every input point", prop.ForAll(
		func(starts []int, width int) bool {
			input := makeIntervals(starts, width)
			result := Union(input)
			for _, iv := range input {
				covered := false
				for _, r := range result {
					if r.Start <= iv.Start && iv.End <= r.End {
						covered = true
						break
					}
				}
				if !covered {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1440)),
		gen.IntRange(0, 240),
	))

	properties.TestingRun(t)
}

// Property-based test: subtraction never keeps a covered point
func TestSubtract_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("no result point lies inside a subtracted interval", prop.ForAll(
		func(aStart, aWidth, bStart, bWidth, step int) bool {
			a := Union([]Interval{{Start: aStart, End: aStart + aWidth}})
			b := Union([]Interval{{Start: bStart, End: bStart + bWidth}})
			for _, iv := range Subtract(a, b, step) {
				if iv.Start > iv.End {
					return false
				}
				for _, sub := range b {
					if sub.Contains(iv.Start) || sub.Contains(iv.End) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 1440),
		gen.IntRange(0, 480),
		gen.IntRange(0, 1440),
		gen.IntRange(0, 480),
		gen.IntRange(1, 60),
	))

	properties.Property("subtracting nothing is identity", prop.ForAll(
		func(start, width int) bool {
			a := []Interval{{Start: start, End: start + width}}
			result := Subtract(a, nil, 30)
			return len(result) == 1 && result[0] == a[0]
		},
		gen.IntRange(0, 1440),
		gen.IntRange(0, 480),
	))

	properties.TestingRun(t)
}
