package server

import (
	"sort"
	"sync"

	"cstyle/internal/engine/analysis"
	"cstyle/internal/engine/lang"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/observability"
)

// Document is one analyzed version of an open document. It is never mutated
// after it is stored; an edit stores a new Document.
type Document struct {
	URI         string
	Version     int
	State       *lang.ParseState
	Diagnostics []analysis.Diagnostic
	// Mapper converts this version's columns to the negotiated encoding.
	Mapper lspext.Mapper
}

// DocumentStore holds the open documents of a session.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

func (s *DocumentStore) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Put stores doc unless a newer version of the same document is already
// stored. It reports whether doc was stored.
func (s *DocumentStore) Put(doc *Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.docs[doc.URI]; ok && prev.Version > doc.Version {
		return false
	}
	s.docs[doc.URI] = doc
	observability.OpenDocuments.Set(float64(len(s.docs)))
	return true
}

// Replace swaps prev for next only while prev is still the stored document,
// so a rebuild never revives a closed document or overwrites a newer edit.
func (s *DocumentStore) Replace(prev, next *Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.docs[prev.URI]; !ok || cur != prev {
		return false
	}
	s.docs[next.URI] = next
	return true
}

func (s *DocumentStore) Delete(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	observability.OpenDocuments.Set(float64(len(s.docs)))
	return ok
}

// All returns the stored documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
