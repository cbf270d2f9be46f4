package godb

// IntHistogram is an equi-width histogram over integer values in [min, max]
// with at most nBins buckets, used by TableStats to estimate predicate
// selectivity. Equality uses a bucket-rounding estimator
// (ceil(height/delta)/N) rather than the simpler height/width/N ratio.
type IntHistogram struct {
	buckets []int64
	min     int32
	max     int32
	delta   int64
	ntotal  int64
}

// NewIntHistogram creates a histogram with at most nBins buckets covering
// the inclusive range [vMin, vMax].
func NewIntHistogram(nBins int, vMin, vMax int32) *IntHistogram {
	span := int64(vMax) - int64(vMin) + 1
	if span < 1 {
		span = 1
	}
	b := int64(nBins)
	if b > span {
		b = span
	}
	if b < 1 {
		b = 1
	}
	delta := ceilDiv(span, b)
	numBuckets := ceilDiv(span, delta)
	return &IntHistogram{
		buckets: make([]int64, numBuckets),
		min:     vMin,
		max:     vMax,
		delta:   delta,
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func (h *IntHistogram) bucketIndex(v int32) int64 {
	return (int64(v) - int64(h.min)) / h.delta
}

// AddValue records one occurrence of v in the histogram.
func (h *IntHistogram) AddValue(v int32) {
	if v < h.min || v > h.max {
		return
	}
	i := h.bucketIndex(v)
	h.buckets[i]++
	h.ntotal++
}

// EstimateSelectivity estimates the fraction of added values satisfying
// "field op v".
func (h *IntHistogram) EstimateSelectivity(op BoolOp, v int32) float64 {
	switch op {
	case OpEq, OpLike:
		return h.equals(v)
	case OpNe:
		return 1 - h.equals(v)
	case OpGt:
		return h.greaterThan(v, false)
	case OpGe:
		return h.greaterThan(v, true)
	case OpLt:
		return 1 - h.greaterThan(v, true)
	case OpLe:
		return 1 - h.greaterThan(v, false)
	default:
		return 0
	}
}

func (h *IntHistogram) equals(v int32) float64 {
	if v < h.min || v > h.max || h.ntotal == 0 {
		return 0
	}
	i := h.bucketIndex(v)
	height := h.buckets[i]
	return float64(ceilDiv(height, h.delta)) / float64(h.ntotal)
}

// greaterThan estimates P(field >= v) when closed, else P(field > v).
func (h *IntHistogram) greaterThan(v int32, closed bool) float64 {
	if h.ntotal == 0 {
		return 0
	}
	if v > h.max {
		return 0
	}
	if v < h.min {
		return 1
	}
	i := h.bucketIndex(v)
	bRight := (i+1)*h.delta + int64(h.min)
	height := h.buckets[i]

	adjust := int64(1)
	if closed {
		adjust = 0
	}
	inBucket := float64(bRight-int64(v)-adjust) * float64(height) / float64(h.delta)
	var rest int64
	for k := i + 1; k < int64(len(h.buckets)); k++ {
		rest += h.buckets[k]
	}
	return (inBucket + float64(rest)) / float64(h.ntotal)
}
