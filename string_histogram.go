package godb

// stringHistogramBound is the half-width of the bounded integer range that
// string values hash into: large enough to separate typical inputs.
const stringHistogramBound = 1 << 20

// StringHistogram reduces string selectivity estimation to an IntHistogram
// by hashing each string into a deterministic bounded integer range. Only
// equality behavior needs to be meaningful, so a simple base-31 polynomial
// hash truncated into range is sufficient.
type StringHistogram struct {
	inner *IntHistogram
}

// NewStringHistogram creates a string histogram with at most nBins buckets.
func NewStringHistogram(nBins int) *StringHistogram {
	return &StringHistogram{inner: NewIntHistogram(nBins, -stringHistogramBound, stringHistogramBound)}
}

func hashStringToRange(s string) int32 {
	var h int64
	for _, r := range s {
		h = h*31 + int64(r)
	}
	v := h % (2 * stringHistogramBound)
	if v < 0 {
		v += 2 * stringHistogramBound
	}
	return int32(v - stringHistogramBound)
}

// AddValue records one occurrence of s.
func (h *StringHistogram) AddValue(s string) {
	h.inner.AddValue(hashStringToRange(s))
}

// EstimateSelectivity estimates the fraction of added values satisfying
// "field op s".
func (h *StringHistogram) EstimateSelectivity(op BoolOp, s string) float64 {
	return h.inner.EstimateSelectivity(op, hashStringToRange(s))
}
