package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/tokenvm/errors"
)

// collectRange returns all btree items in [start, end), in requested order.
// Nil start or end means no bound.
func collectRange(bt *btree.BTree, start, end []byte, ascending bool) []entry {
	var res []entry
	add := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(add)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, add)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, add)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, add)
	}
	if !ascending {
		for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
	}
	return res
}

// mergeIterator combines the cached items with the parent iterator, taking
// into consideration overwrites and deletes. Cached items take precedence.
type mergeIterator struct {
	ours      []entry
	idx       int
	parent    Iterator
	ascending bool

	// peeked parent item
	pKey, pValue []byte
	pLoaded      bool
	pDone        bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(ours []entry, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{
		ours:      ours,
		parent:    parent,
		ascending: ascending,
	}
}

func (m *mergeIterator) peekParent() error {
	if m.pLoaded || m.pDone {
		return nil
	}
	k, v, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.pDone = true
		return nil
	case err != nil:
		return err
	}
	m.pKey, m.pValue, m.pLoaded = k, v, true
	return nil
}

// before returns true if a comes before b in iteration order.
func (m *mergeIterator) before(a, b []byte) bool {
	cmp := bytes.Compare(a, b)
	if m.ascending {
		return cmp < 0
	}
	return cmp > 0
}

// Next implements Iterator.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.peekParent(); err != nil {
			return nil, nil, err
		}
		hasOurs := m.idx < len(m.ours)

		if !hasOurs && !m.pLoaded {
			return nil, nil, errors.ErrIteratorDone
		}

		if hasOurs && m.pLoaded && m.before(m.pKey, m.ours[m.idx].key) {
			m.pLoaded = false
			return m.pKey, m.pValue, nil
		}
		if !hasOurs {
			m.pLoaded = false
			return m.pKey, m.pValue, nil
		}

		e := m.ours[m.idx]
		m.idx++
		// The same key in the parent is shadowed.
		if m.pLoaded && bytes.Equal(m.pKey, e.key) {
			m.pLoaded = false
		}
		if !e.deleted {
			return e.key, e.value, nil
		}
	}
}

// Release implements Iterator.
func (m *mergeIterator) Release() {
	m.parent.Release()
	m.ours = nil
}
