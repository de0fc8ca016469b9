package scoring

import "math"

// rule adds Delta to the score when Match holds.
type rule struct {
	Match func(v float64) bool
	Delta float64
}

// field is one input of a metric family together with its rules, ordered
// best to worst. Only the first matching rule applies.
type field struct {
	Name  string
	Value func(f *input) float64
	Rules []rule
}

func above(x float64) func(float64) bool { return func(v float64) bool { return v > x } }
func below(x float64) func(float64) bool { return func(v float64) bool { return v < x } }
func between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v > lo && v < hi }
}

const base = 50.0

// apply starts from the base score, applies every field's first matching
// rule and clamps the result to [0, 100]. Missing (zero) and non-finite
// values contribute nothing.
func apply(in *input, fields []field) float64 {
	score := base
	for _, fd := range fields {
		v := fd.Value(in)
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		for _, r := range fd.Rules {
			if r.Match(v) {
				score += r.Delta
				break
			}
		}
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
