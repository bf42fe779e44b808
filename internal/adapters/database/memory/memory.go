// Package memory is an in-process kv.Backend. It backs the default server
// configuration and the service tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/ledger_engine/internal/adapters/database/kv"
)

// Backend keeps every bucket in maps guarded by a single RWMutex. Writers are
// serialised; an Update whose fn fails or panics is rolled back from its undo log.
type Backend struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	closed  bool
}

// New creates an empty backend with every ledger bucket.
func New() *Backend {
	b := &Backend{buckets: make(map[string]map[string][]byte, len(kv.Buckets))}
	for _, name := range kv.Buckets {
		b.buckets[name] = make(map[string][]byte)
	}
	return b
}

// NewStore is a convenience for kv.NewStore(New()).
func NewStore() *kv.Store {
	return kv.NewStore(New())
}

var _ kv.Backend = (*Backend)(nil)

func (b *Backend) Update(ctx context.Context, fn func(tx kv.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("memory backend is closed")
	}

	tx := &memTx{backend: b, writable: true}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (b *Backend) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory backend is closed")
	}
	return fn(&memTx{backend: b})
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type undoRecord struct {
	bucket  string
	key     string
	prev    []byte
	existed bool
}

type memTx struct {
	backend  *Backend
	writable bool
	undo     []undoRecord
}

func (t *memTx) bucket(name string) (map[string][]byte, error) {
	m, ok := t.backend.buckets[name]
	if !ok {
		return nil, fmt.Errorf("bucket %s not found", name)
	}
	return m, nil
}

func (t *memTx) Get(bucket string, key []byte) []byte {
	m, err := t.bucket(bucket)
	if err != nil {
		return nil
	}
	return m[string(key)]
}

func (t *memTx) Put(bucket string, key, value []byte) error {
	if !t.writable {
		return fmt.Errorf("put %s: read-only transaction", bucket)
	}
	m, err := t.bucket(bucket)
	if err != nil {
		return err
	}
	k := string(key)
	prev, existed := m[k]
	t.undo = append(t.undo, undoRecord{bucket: bucket, key: k, prev: prev, existed: existed})
	m[k] = bytes.Clone(value)
	return nil
}

func (t *memTx) Delete(bucket string, key []byte) error {
	if !t.writable {
		return fmt.Errorf("delete %s: read-only transaction", bucket)
	}
	m, err := t.bucket(bucket)
	if err != nil {
		return err
	}
	k := string(key)
	prev, existed := m[k]
	if !existed {
		return nil
	}
	t.undo = append(t.undo, undoRecord{bucket: bucket, key: k, prev: prev, existed: true})
	delete(m, k)
	return nil
}

func (t *memTx) Scan(bucket string, prefix, start []byte, fn func(k, v []byte) (bool, error)) error {
	m, err := t.bucket(bucket)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if start != nil && k < string(start) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		more, err := fn([]byte(k), v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// rollback replays the undo log newest first.
func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		u := t.undo[i]
		m := t.backend.buckets[u.bucket]
		if u.existed {
			m[u.key] = u.prev
		} else {
			delete(m, u.key)
		}
	}
	t.undo = nil
}
