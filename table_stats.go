package godb

import (
	"fmt"
	"log"
	"math"

	boom "github.com/tylertreat/BoomFilters"
)

// Stats is the estimator surface a query planner consults.
type Stats interface {
	EstimateScanCost() float64
	EstimateCardinality(selectivity float64) int64
	EstimateSelectivity(field string, op BoolOp, value DBValue) (float64, error)
}

// TableStats holds per-column histograms and page/tuple counts for one base
// table, built with a two-pass scan: first pass computes per-field min/max,
// second pass populates histograms. A BoomFilters CountMinSketch per string
// column additionally answers approximate frequency lookups the bucketed
// StringHistogram cannot.
type TableStats struct {
	numPages int64
	numTups  int64
	desc     *TupleDesc

	intHists    map[string]*IntHistogram
	stringHists map[string]*StringHistogram
	sketches    map[string]*boom.CountMinSketch
}

// ComputeTableStats scans dbFile twice under a dedicated transaction to
// build per-column statistics.
func ComputeTableStats(bp *BufferPool, dbFile DBFile) (*TableStats, error) {
	tid := NewTID()
	if err := bp.BeginTransaction(tid); err != nil {
		return nil, err
	}
	defer bp.CommitTransaction(tid)

	desc := dbFile.Descriptor()
	mins, maxs, err := tableMinMax(tid, dbFile)
	if err != nil {
		return nil, err
	}

	intHists := make(map[string]*IntHistogram)
	stringHists := make(map[string]*StringHistogram)
	sketches := make(map[string]*boom.CountMinSketch)
	for i, f := range desc.Fields {
		switch f.Ftype {
		case IntType:
			intHists[f.Fname] = NewIntHistogram(NumHistBins, mins[i], maxs[i])
		case StringType:
			stringHists[f.Fname] = NewStringHistogram(NumHistBins)
			sketches[f.Fname] = boom.NewCountMinSketch(0.001, 0.999)
		}
	}

	iter, err := dbFile.Iterator(tid)
	if err != nil {
		return nil, err
	}
	var numTups int64
	for t, err := iter(); t != nil; t, err = iter() {
		if err != nil {
			return nil, err
		}
		for i, f := range desc.Fields {
			switch f.Ftype {
			case IntType:
				intHists[f.Fname].AddValue(t.Fields[i].(IntField).Value)
			case StringType:
				v := t.Fields[i].(StringField).Value
				stringHists[f.Fname].AddValue(v)
				sketches[f.Fname].Add([]byte(v))
			}
		}
		numTups++
	}

	return &TableStats{
		numPages:    dbFile.NumPages(),
		numTups:     numTups,
		desc:        desc,
		intHists:    intHists,
		stringHists: stringHists,
		sketches:    sketches,
	}, nil
}

func tableMinMax(tid TransactionID, dbFile DBFile) ([]int32, []int32, error) {
	desc := dbFile.Descriptor()
	mins := make([]int32, len(desc.Fields))
	maxs := make([]int32, len(desc.Fields))
	for i := range mins {
		mins[i] = math.MaxInt32
		maxs[i] = math.MinInt32
	}

	iter, err := dbFile.Iterator(tid)
	if err != nil {
		return nil, nil, err
	}
	for t, err := iter(); t != nil; t, err = iter() {
		if err != nil {
			return nil, nil, err
		}
		for i, f := range desc.Fields {
			if f.Ftype != IntType {
				continue
			}
			v := t.Fields[i].(IntField).Value
			if v < mins[i] {
				mins[i] = v
			}
			if v > maxs[i] {
				maxs[i] = v
			}
		}
	}
	for i := range mins {
		if mins[i] > maxs[i] {
			mins[i], maxs[i] = 0, 0
		}
	}
	return mins, maxs, nil
}

// EstimateScanCost estimates the I/O cost of a full sequential scan.
func (t *TableStats) EstimateScanCost() float64 {
	return float64(t.numPages) * float64(IoCostPerPage)
}

// EstimateCardinality estimates the number of tuples surviving a predicate
// of the given selectivity.
func (t *TableStats) EstimateCardinality(selectivity float64) int64 {
	return int64(float64(t.numTups) * selectivity)
}

// EstimateSelectivity estimates the fraction of tuples satisfying
// "field op value", delegating to the field's histogram.
func (t *TableStats) EstimateSelectivity(field string, op BoolOp, value DBValue) (float64, error) {
	if h, ok := t.intHists[field]; ok {
		iv, ok := value.(IntField)
		if !ok {
			return 1.0, fmt.Errorf("field %q is int, value %v is not", field, value)
		}
		return h.EstimateSelectivity(op, iv.Value), nil
	}
	if h, ok := t.stringHists[field]; ok {
		sv, ok := value.(StringField)
		if !ok {
			return 1.0, fmt.Errorf("field %q is string, value %v is not", field, value)
		}
		return h.EstimateSelectivity(op, sv.Value), nil
	}
	log.Printf("no histogram for field %q, assuming selectivity 1.0", field)
	return 1.0, nil
}

// ApproxFrequency returns a count-min-sketch estimate of how many rows
// carry value in the named string column: a frequency reading the bucketed
// StringHistogram is not built to answer.
func (t *TableStats) ApproxFrequency(field, value string) uint64 {
	sk, ok := t.sketches[field]
	if !ok {
		return 0
	}
	return sk.Count([]byte(value))
}
