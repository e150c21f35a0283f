/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package document

import (
	"container/list"
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/rope"
)

const (
	defaultOpenCapacity   = 200
	defaultClosedCapacity = 100
)

// Manager is the Document Store (§4.2): it owns every open Document and an
// LRU cache of recently-closed ones, behind a map plus per-document locking
// and a dedicated manager mutex, simplified since Gren documents need no
// per-language dispatch.
type Manager struct {
	mu   sync.RWMutex
	open map[string]*Document

	// openOrder tracks open-set recency for the open-set eviction policy
	// (§4.2: evict the least-recently-accessed open document, not moved to
	// the closed cache, when capacity would be exceeded).
	openOrder     *list.List
	openElements  map[string]*list.Element
	openCapacity  int

	closed         *list.List
	closedElements map[string]*list.Element
	closedCapacity int
}

type closedEntry struct {
	uri  string
	text string
}

func NewManager() *Manager {
	return &Manager{
		open:           make(map[string]*Document),
		openOrder:      list.New(),
		openElements:   make(map[string]*list.Element),
		openCapacity:   defaultOpenCapacity,
		closed:         list.New(),
		closedElements: make(map[string]*list.Element),
		closedCapacity: defaultClosedCapacity,
	}
}

// Open inserts a new document, replacing any prior document at this URI, per
// §4.2's open contract.
func (m *Manager) Open(uri, content string, version int32) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := NewDocument(uri, content, version)
	m.open[uri] = doc
	m.touchOpenLocked(uri)
	m.evictOpenIfNeededLocked()
	return doc
}

// RangeChange is one incremental edit: either Range is nil (a full-document
// replacement) or it names the span to replace.
type RangeChange struct {
	Range   *rope.Range
	NewText string
}

// ApplyChanges applies a full ordered list of LSP change events to an open
// document in one versioned call, per §4.2. Each element is either a range
// replacement or (Range == nil) a full-document replacement; they are
// applied left-to-right against the already-mutating document.
func (m *Manager) ApplyChanges(uri string, version int32, changes []RangeChange) (*Document, error) {
	m.mu.Lock()
	doc, ok := m.open[uri]
	if ok {
		m.touchOpenLocked(uri)
	}
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("change to unopened document %s", uri)
	}

	if doc.Version() >= version {
		return nil, fmt.Errorf("version %d is not strictly greater than current version %d for %s", version, doc.Version(), uri)
	}

	for _, c := range changes {
		if c.Range == nil {
			if err := doc.ApplyFullChange(version, c.NewText); err != nil {
				return nil, err
			}
			continue
		}
		if err := doc.ApplyRangeChange(version, *c.Range, c.NewText); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Close removes uri from the open set and places a copy of its text in the
// LRU closed cache, per §4.2. Symbol Index rows are untouched — closing is
// not deletion.
func (m *Manager) Close(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.open[uri]
	if !ok {
		return
	}
	delete(m.open, uri)
	if el, ok := m.openElements[uri]; ok {
		m.openOrder.Remove(el)
		delete(m.openElements, uri)
	}

	m.putClosedLocked(uri, doc.Text())
}

// Get returns the open document at uri, or nil.
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if doc, ok := m.open[uri]; ok {
		return doc
	}
	return nil
}

// ClosedText returns the cached text for a recently-closed document, if
// still present in the LRU closed cache.
func (m *Manager) ClosedText(uri string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.closedElements[uri]
	if !ok {
		return "", false
	}
	m.closed.MoveToFront(el)
	return el.Value.(*closedEntry).text, true
}

// All returns every currently-open document.
func (m *Manager) All() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*Document, 0, len(m.open))
	for _, d := range m.open {
		docs = append(docs, d)
	}
	return docs
}

func (m *Manager) touchOpenLocked(uri string) {
	if el, ok := m.openElements[uri]; ok {
		m.openOrder.MoveToFront(el)
		return
	}
	el := m.openOrder.PushFront(uri)
	m.openElements[uri] = el
}

// evictOpenIfNeededLocked removes the least-recently-accessed open document
// when the open set exceeds capacity, per §4.2's eviction policy: this is a
// working-set bound only, not a close (the editor still considers it open).
func (m *Manager) evictOpenIfNeededLocked() {
	for len(m.open) > m.openCapacity {
		back := m.openOrder.Back()
		if back == nil {
			return
		}
		uri := back.Value.(string)
		m.openOrder.Remove(back)
		delete(m.openElements, uri)
		delete(m.open, uri)
	}
}

func (m *Manager) putClosedLocked(uri, text string) {
	if el, ok := m.closedElements[uri]; ok {
		el.Value.(*closedEntry).text = text
		m.closed.MoveToFront(el)
		return
	}
	el := m.closed.PushFront(&closedEntry{uri: uri, text: text})
	m.closedElements[uri] = el
	if m.closed.Len() > m.closedCapacity {
		back := m.closed.Back()
		if back != nil {
			m.closed.Remove(back)
			delete(m.closedElements, back.Value.(*closedEntry).uri)
		}
	}
}

// ToRopeRange converts a protocol Range to the internal rope.Range type
// used throughout the server's position arithmetic.
func ToRopeRange(r protocol.Range) rope.Range {
	return rope.Range{
		Start: rope.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   rope.Position{Line: r.End.Line, Character: r.End.Character},
	}
}
