package godb

import (
	"container/list"
	"sync"
)

// RWPerm names the intent with which a page is fetched from the BufferPool.
type RWPerm int

const (
	ReadPerm RWPerm = iota
	WritePerm
)

// BufferPool is a bounded, strict-LRU cache of Pages keyed by PageID.
// Eviction follows the STEAL policy: a dirty LRU victim is flushed through
// its owning file before being dropped, tracked via an indexed doubly
// linked list rather than an intrusive pointer structure.
type BufferPool struct {
	maxPages int

	mu      sync.Mutex
	order   *list.List               // front = MRU, back = LRU
	entries map[any]*list.Element    // key -> element, element.Value is *bpEntry
}

type bpEntry struct {
	key  any
	page Page
}

// NewBufferPool creates a BufferPool bounded to numPages entries.
func NewBufferPool(numPages int) (*BufferPool, error) {
	return &BufferPool{
		maxPages: numPages,
		order:    list.New(),
		entries:  make(map[any]*list.Element),
	}, nil
}

func pageKey(pid PageID) any {
	return HeapPageID{tableID: pid.TableID(), pageNo: pid.PageNo()}
}

// GetPage returns the page pid from file, reading it from disk on a cache
// miss and evicting the LRU entry if the pool is full. Every successful call
// moves pid to MRU, hit or miss.
func (bp *BufferPool) GetPage(file DBFile, pageNo int, tid TransactionID, perm RWPerm) (Page, error) {
	pid := NewHeapPageID(file.TableID(), pageNo)
	key := pageKey(pid)

	bp.mu.Lock()
	if el, ok := bp.entries[key]; ok {
		bp.order.MoveToFront(el)
		page := el.Value.(*bpEntry).page
		bp.mu.Unlock()
		return page, nil
	}
	bp.mu.Unlock()

	page, err := file.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()
	// Another caller may have raced us to populate this key; prefer the
	// already-cached page so identity is stable.
	if el, ok := bp.entries[key]; ok {
		bp.order.MoveToFront(el)
		return el.Value.(*bpEntry).page, nil
	}
	if err := bp.makeRoomLocked(); err != nil {
		return nil, err
	}
	el := bp.order.PushFront(&bpEntry{key: key, page: page})
	bp.entries[key] = el
	return page, nil
}

// cachePage inserts a freshly created page (one not fetched via GetPage, as
// happens when HeapFile appends a new page) at MRU.
func (bp *BufferPool) cachePage(file DBFile, page Page) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	key := pageKey(page.ID())
	if el, ok := bp.entries[key]; ok {
		el.Value.(*bpEntry).page = page
		bp.order.MoveToFront(el)
		return
	}
	if err := bp.makeRoomLocked(); err != nil {
		return
	}
	el := bp.order.PushFront(&bpEntry{key: key, page: page})
	bp.entries[key] = el
}

// makeRoomLocked evicts the LRU entry if the pool is at capacity. Must be
// called with bp.mu held.
func (bp *BufferPool) makeRoomLocked() error {
	if len(bp.entries) < bp.maxPages {
		return nil
	}
	back := bp.order.Back()
	if back == nil {
		return GoDBError{BufferPoolFullError, "buffer pool full with no victim"}
	}
	entry := back.Value.(*bpEntry)
	if tid := entry.page.IsDirty(); tid != nil {
		if err := entry.page.GetFile().FlushPage(entry.page); err != nil {
			return err
		}
	}
	bp.order.Remove(back)
	delete(bp.entries, entry.key)
	return nil
}

// InsertTuple delegates to file.InsertTuple and ensures every dirtied page
// it returns is present in the cache at MRU.
func (bp *BufferPool) InsertTuple(tid TransactionID, file DBFile, t *Tuple) error {
	pages, err := file.InsertTuple(t, tid)
	if err != nil {
		return err
	}
	for _, p := range pages {
		bp.cachePage(file, p)
	}
	return nil
}

// DeleteTuple delegates to the owning file's DeleteTuple using t.Rid.
func (bp *BufferPool) DeleteTuple(tid TransactionID, file DBFile, t *Tuple) error {
	p, err := file.DeleteTuple(t, tid)
	if err != nil {
		return err
	}
	bp.cachePage(file, p)
	return nil
}

// FlushAllPages writes every cached dirty page to disk without evicting it.
func (bp *BufferPool) FlushAllPages() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	for el := bp.order.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*bpEntry)
		if entry.page.IsDirty() != nil {
			entry.page.GetFile().FlushPage(entry.page)
		}
	}
}

// FlushPage writes the specific cached page, if dirty, without evicting it.
func (bp *BufferPool) FlushPage(pid PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	el, ok := bp.entries[pageKey(pid)]
	if !ok {
		return nil
	}
	entry := el.Value.(*bpEntry)
	if entry.page.IsDirty() == nil {
		return nil
	}
	return entry.page.GetFile().FlushPage(entry.page)
}

// DiscardPage removes pid from the cache without flushing it. A silent
// no-op if pid is not present.
func (bp *BufferPool) DiscardPage(pid PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	key := pageKey(pid)
	el, ok := bp.entries[key]
	if !ok {
		return
	}
	bp.order.Remove(el)
	delete(bp.entries, key)
}

// BeginTransaction, CommitTransaction, and AbortTransaction are kept as
// hooks, not a working concurrency-control layer; they keep no per-
// transaction state. Commit flushes every dirty page in the pool (not only
// tid's) so results are visible; Begin and Abort are no-ops, since the STEAL policy means an aborted transaction's
// writes may already be on disk and undoing them would require real
// WAL-based recovery.
func (bp *BufferPool) BeginTransaction(tid TransactionID) error {
	return nil
}

func (bp *BufferPool) CommitTransaction(tid TransactionID) {
	bp.FlushAllPages()
}

func (bp *BufferPool) AbortTransaction(tid TransactionID) {
}
