package godb

import "testing"

// IntHistogram(buckets=10, min=1, max=100) with values 1..100 each once.
func TestIntHistogramUniformDistribution(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}

	gt := h.EstimateSelectivity(OpGt, 50)
	if gt < 0.45 || gt > 0.55 {
		t.Fatalf("expected GREATER_THAN(50) ~= 0.50, got %f", gt)
	}
	eq := h.EstimateSelectivity(OpEq, 50)
	if eq < 0.005 || eq > 0.015 {
		t.Fatalf("expected EQUALS(50) ~= 0.01, got %f", eq)
	}
}

// Invariant 9: every selectivity estimate lies in [0, 1].
func TestIntHistogramSelectivityInRange(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}
	ops := []BoolOp{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpLike}
	for v := int32(-10); v <= 110; v += 5 {
		for _, op := range ops {
			s := h.EstimateSelectivity(op, v)
			if s < 0 || s > 1 {
				t.Fatalf("EstimateSelectivity(%v, %d) = %f, out of [0,1]", op, v, s)
			}
		}
	}
}

// Invariant 10: equals(v) + not_equals(v) == 1 for every v.
func TestIntHistogramEqualsNotEqualsComplement(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}
	for v := int32(-5); v <= 105; v++ {
		eq := h.EstimateSelectivity(OpEq, v)
		ne := h.EstimateSelectivity(OpNe, v)
		if eq+ne != 1 {
			t.Fatalf("equals(%d)+not_equals(%d) = %f, expected 1", v, v, eq+ne)
		}
	}
}

func TestStringHistogramEquality(t *testing.T) {
	h := NewStringHistogram(10)
	for _, s := range []string{"apple", "banana", "apple", "cherry"} {
		h.AddValue(s)
	}
	eq := h.EstimateSelectivity(OpEq, "apple")
	if eq <= 0 {
		t.Fatalf("expected positive selectivity for a value seen twice, got %f", eq)
	}
	absent := h.EstimateSelectivity(OpEq, "durian-not-present")
	if absent < 0 || absent > 1 {
		t.Fatalf("selectivity out of range: %f", absent)
	}
}
