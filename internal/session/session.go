// Package session keeps per-user workdesk state between HTTP requests.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/a3tai/pdf-workdesk/internal/pdf"
)

// Session holds the documents and produced artifacts of one user
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	lastAccess time.Time
	document   *pdf.Document
	merge      *pdf.Document
	artifacts  map[string]*pdf.Artifact
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		lastAccess: now,
		artifacts:  make(map[string]*pdf.Artifact),
	}
}

// SetDocument replaces the main document. Artifacts produced from the
// previous document are dropped.
func (s *Session) SetDocument(doc *pdf.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = doc
	s.artifacts = make(map[string]*pdf.Artifact)
}

// SetMergeDocument replaces the document appended by a merge
func (s *Session) SetMergeDocument(doc *pdf.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merge = doc
}

// Document returns the main document, or nil before an upload
func (s *Session) Document() *pdf.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// MergeDocument returns the second document, or nil
func (s *Session) MergeDocument() *pdf.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merge
}

// PutArtifact stores a produced artifact under its name
func (s *Session) PutArtifact(a *pdf.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.Name] = a
}

// Artifact returns the artifact with the given name
func (s *Session) Artifact(name string) (*pdf.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[name]
	return a, ok
}

// Artifacts returns all artifacts sorted by name
func (s *Session) Artifacts() []*pdf.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*pdf.Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// LastAccess returns when the session was last used
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}
