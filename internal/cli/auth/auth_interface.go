package auth

import (
	"net/http"
	"sync"
)

// CookieStore defines the interface for session cookie storage operations.
// This allows us to swap the keyring out in tests.
type CookieStore interface {
	Save(serverURL string, cookies []*http.Cookie) error
	Load(serverURL string) ([]*http.Cookie, error)
	Delete(serverURL string) error
}

// keyringStore implements CookieStore using the OS keyring
type keyringStore struct{}

var Default CookieStore = &keyringStore{}

func (k *keyringStore) Save(serverURL string, cookies []*http.Cookie) error {
	return SaveCookies(serverURL, cookies)
}

func (k *keyringStore) Load(serverURL string) ([]*http.Cookie, error) {
	return LoadCookies(serverURL)
}

func (k *keyringStore) Delete(serverURL string) error {
	return DeleteCookies(serverURL)
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]*http.Cookie
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]*http.Cookie)}
}

func (m *MemoryStore) Save(serverURL string, cookies []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[serverURL] = append([]*http.Cookie(nil), cookies...)
	return nil
}

func (m *MemoryStore) Load(serverURL string) ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Cookie(nil), m.sessions[serverURL]...), nil
}

func (m *MemoryStore) Delete(serverURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, serverURL)
	return nil
}
