package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	apporder "github.com/tungtungsport/storefront/internal/application/order"
)

var _ apporder.ProofStorage = (*MemoryProofStorage)(nil)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryProofStorage keeps proof images in process memory. It backs local
// runs without object storage and the handler tests.
type MemoryProofStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	// BaseURL prefixes the URLs returned by PresignURL
	BaseURL string
}

// NewMemoryProofStorage creates an empty MemoryProofStorage
func NewMemoryProofStorage() *MemoryProofStorage {
	return &MemoryProofStorage{
		objects: make(map[string]memoryObject),
		BaseURL: "memory://payment-proofs",
	}
}

// Upload stores the body under key
func (s *MemoryProofStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return ErrKeyRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	if size > 0 && n != size {
		return fmt.Errorf("upload size mismatch: got %d bytes, expected %d", n, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{contentType: contentType, data: buf.Bytes()}
	return nil
}

// Delete removes the object under key
func (s *MemoryProofStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PresignURL returns a pseudo URL for a stored object
func (s *MemoryProofStorage) PresignURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %q not found", key)
	}
	return s.BaseURL + "/" + url.PathEscape(key), nil
}

// Get returns the stored bytes and content type
func (s *MemoryProofStorage) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// Len returns the number of stored objects
func (s *MemoryProofStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
