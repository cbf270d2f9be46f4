package godb

import "testing"

func TestEquiJoin(t *testing.T) {
	_, left, _ := tableWithRows(t, [][2]int32{{1, 10}, {2, 20}, {3, 30}})
	_, right, _ := tableWithRows(t, [][2]int32{{2, 200}, {3, 300}, {4, 400}})

	leftScan := NewSeqScan(left, "l")
	rightScan := NewSeqScan(right, "r")
	pred := &JoinPredicate{LeftIndex: 0, Op: OpEq, RightIndex: 0}
	join := NewEquiJoin(leftScan, rightScan, pred)

	tid := NewTID()
	if err := join.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer join.Close()

	count := 0
	for {
		has, err := join.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			break
		}
		tup, err := join.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if tup.Fields[0].(IntField).Value != tup.Fields[2].(IntField).Value {
			t.Fatalf("join produced mismatched key tuple: %+v", tup.Fields)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 matching rows, got %d", count)
	}
}

func TestOrderByMultiKey(t *testing.T) {
	_, hf, _ := tableWithRows(t, [][2]int32{{1, 30}, {1, 10}, {2, 20}})
	scan := NewSeqScan(hf, "t")
	ob, err := NewOrderBy([]int{0, 1}, []bool{true, true}, scan)
	if err != nil {
		t.Fatalf("NewOrderBy: %v", err)
	}
	tid := NewTID()
	if err := ob.Open(tid); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ob.Close()

	var got [][2]int32
	for {
		has, err := ob.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			break
		}
		tup, err := ob.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, [2]int32{tup.Fields[0].(IntField).Value, tup.Fields[1].(IntField).Value})
	}
	want := [][2]int32{{1, 10}, {1, 30}, {2, 20}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
