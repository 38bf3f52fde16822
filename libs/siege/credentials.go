package siege

import "sync"

// Credentials is the ticket/session pair issued by the identity service.
type Credentials struct {
	Ticket    string
	SessionID string
}

// Authorization returns the value for the Authorization header of data requests.
func (c Credentials) Authorization() string {
	return "Ubi_v1 t=" + c.Ticket
}

// CredentialStore holds the credentials of a single Client.
type CredentialStore interface {
	// Credentials returns the stored pair and whether one has been set.
	Credentials() (Credentials, bool)
	// SetCredentials replaces the stored pair.
	SetCredentials(creds Credentials)
}

// MemoryStore is the default in-process CredentialStore.
type MemoryStore struct {
	mu    sync.RWMutex
	creds *Credentials
}

var _ CredentialStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Credentials() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds == nil {
		return Credentials{}, false
	}
	return *s.creds, true
}

func (s *MemoryStore) SetCredentials(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = &creds
}
