package godb

// Engine bundles the two pieces of process state every operator needs: the
// Catalog (table lookup) and the BufferPool (page cache). Passed explicitly
// to operators rather than reached through package-level singletons.
type Engine struct {
	Catalog     *Catalog
	BufferPool  *BufferPool
}

// NewEngine wires a Catalog and a BufferPool of the given capacity together.
func NewEngine(catalogFile, rootDir string, bufferPoolPages int) (*Engine, error) {
	bp, err := NewBufferPool(bufferPoolPages)
	if err != nil {
		return nil, err
	}
	cat := NewCatalog(bp, rootDir)
	if catalogFile != "" {
		if err := cat.LoadFromFile(catalogFile); err != nil {
			return nil, err
		}
	}
	return &Engine{Catalog: cat, BufferPool: bp}, nil
}
