package godb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.txt")
	contents := "t (a int pk, b string)\n"
	if err := os.WriteFile(catalogPath, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	cat := NewCatalog(bp, dir)
	if err := cat.LoadFromFile(catalogPath); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	id, err := cat.GetTableID("t")
	if err != nil {
		t.Fatalf("GetTableID: %v", err)
	}
	file, err := cat.GetFile(id)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if len(file.Descriptor().Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(file.Descriptor().Fields))
	}
	pk, err := cat.PrimaryKey(id)
	if err != nil {
		t.Fatalf("PrimaryKey: %v", err)
	}
	if pk != "a" {
		t.Fatalf("expected primary key %q, got %q", "a", pk)
	}
}

// Duplicate table names evict the prior id->entry mapping.
func TestCatalogDuplicateNameEvictsPriorMapping(t *testing.T) {
	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	dir := t.TempDir()
	cat := NewCatalog(bp, dir)
	desc := intIntDesc()

	hf1, err := NewHeapFile(dir+"/t1.dat", &desc, bp)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	cat.AddTable("t", hf1, "")
	id1, _ := cat.GetTableID("t")

	hf2, err := NewHeapFile(dir+"/t2.dat", &desc, bp)
	if err != nil {
		t.Fatalf("NewHeapFile: %v", err)
	}
	cat.AddTable("t", hf2, "")
	id2, _ := cat.GetTableID("t")

	if id1 == id2 {
		return
	}
	if _, err := cat.GetFile(id1); err == nil {
		t.Fatalf("expected prior table id %d to be evicted", id1)
	}
}

func TestCatalogTablesSorted(t *testing.T) {
	bp, err := NewBufferPool(10)
	if err != nil {
		t.Fatalf("NewBufferPool: %v", err)
	}
	dir := t.TempDir()
	cat := NewCatalog(bp, dir)
	desc := intIntDesc()
	for _, name := range []string{"zebra", "apple", "mango"} {
		hf, err := NewHeapFile(dir+"/"+name+".dat", &desc, bp)
		if err != nil {
			t.Fatalf("NewHeapFile: %v", err)
		}
		cat.AddTable(name, hf, "")
	}
	got := cat.Tables()
	want := []string{"apple", "mango", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
