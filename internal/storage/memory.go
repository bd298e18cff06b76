package storage

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	apperrors "cv-analyzer/pkg/errors"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(_ context.Context, id string, data []byte, contentType, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[id] = Object{Data: buf, ContentType: contentType, Filename: filename}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, apperrors.WrapError(nil, apperrors.ErrNotFound.Code,
			fmt.Sprintf("document %s not found", id), http.StatusNotFound)
	}
	return &Object{Data: obj.Data, ContentType: obj.ContentType, Filename: obj.Filename}, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	return nil
}

func (s *MemoryStore) Ready(context.Context) error {
	return nil
}
