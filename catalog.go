package godb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// tableEntry is the Catalog's per-table record: file, display name, and the
// primary-key field name (empty if none declared).
type tableEntry struct {
	file DBFile
	name string
	pk   string
}

// Catalog maps table ids to (DBFile, name, primary key) and table names to
// ids, last-write-wins on name conflicts: when a duplicate name displaces a
// prior mapping, the prior schema is evicted from the id map as well.
type Catalog struct {
	mu        sync.Mutex
	bufPool   *BufferPool
	rootDir   string
	byID      map[int]*tableEntry
	idByName  map[string]int
}

// NewCatalog creates an empty Catalog rooted at rootDir (used to resolve
// relative heap-file paths when loading from a catalog text file).
func NewCatalog(bp *BufferPool, rootDir string) *Catalog {
	return &Catalog{
		bufPool:  bp,
		rootDir:  rootDir,
		byID:     make(map[int]*tableEntry),
		idByName: make(map[string]int),
	}
}

// AddTable registers file under name with the given primary key field name
// (pass "" for none). If name was already registered, the prior id->entry
// mapping is evicted.
func (c *Catalog) AddTable(name string, file DBFile, pk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prevID, ok := c.idByName[name]; ok {
		delete(c.byID, prevID)
	}
	id := file.TableID()
	c.byID[id] = &tableEntry{file: file, name: name, pk: pk}
	c.idByName[name] = id
}

// GetTableID returns the table id registered for name.
func (c *Catalog) GetTableID(name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.idByName[name]
	if !ok {
		return 0, GoDBError{NoSuchElementError, fmt.Sprintf("no table named %q", name)}
	}
	return id, nil
}

// GetFile returns the DBFile registered for tableID.
func (c *Catalog) GetFile(tableID int) (DBFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[tableID]
	if !ok {
		return nil, GoDBError{NoSuchElementError, fmt.Sprintf("no table with id %d", tableID)}
	}
	return e.file, nil
}

// GetTableName returns the display name registered for tableID.
func (c *Catalog) GetTableName(tableID int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[tableID]
	if !ok {
		return "", GoDBError{NoSuchElementError, fmt.Sprintf("no table with id %d", tableID)}
	}
	return e.name, nil
}

// PrimaryKey returns the primary-key field name registered for tableID, or
// "" if none was declared.
func (c *Catalog) PrimaryKey(tableID int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[tableID]
	if !ok {
		return "", GoDBError{NoSuchElementError, fmt.Sprintf("no table with id %d", tableID)}
	}
	return e.pk, nil
}

// Tables returns the registered table names, sorted, using
// golang.org/x/exp/maps for stable enumeration over the name->id map.
func (c *Catalog) Tables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := maps.Keys(c.idByName)
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// LoadFromFile parses a catalog text file: one table per line,
// `name (field_name field_type[ pk], ...)`. Types are "int"/"string"
// (case-insensitive); "pk" annotates the primary-key field. For each line a
// heap file named "<name>.dat" is opened relative to the Catalog's rootDir.
func (c *Catalog) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.loadLine(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *Catalog) loadLine(line string) error {
	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < 0 || close < open {
		return GoDBError{MalformedDataError, fmt.Sprintf("malformed catalog line: %q", line)}
	}
	name := strings.TrimSpace(line[:open])
	body := line[open+1 : close]

	var fields []FieldType
	pk := ""
	for _, rawField := range strings.Split(body, ",") {
		parts := strings.Fields(strings.TrimSpace(rawField))
		if len(parts) < 2 {
			return GoDBError{MalformedDataError, fmt.Sprintf("malformed field in catalog line: %q", rawField)}
		}
		fname := parts[0]
		var ftype DBType
		switch strings.ToLower(parts[1]) {
		case "int":
			ftype = IntType
		case "string":
			ftype = StringType
		default:
			return GoDBError{MalformedDataError, fmt.Sprintf("unknown type %q", parts[1])}
		}
		if len(parts) >= 3 && strings.EqualFold(parts[2], "pk") {
			pk = fname
		}
		fields = append(fields, FieldType{Fname: fname, Ftype: ftype})
	}

	td := &TupleDesc{Fields: fields}
	path := filepath.Join(c.rootDir, name+".dat")
	hf, err := NewHeapFile(path, td, c.bufPool)
	if err != nil {
		return err
	}
	c.AddTable(name, hf, pk)
	return nil
}
