package state

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryStore keeps conversation state in-process. It backs the CLI and
// tests; multi-process deployments use the Upstash store instead.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*ConversationState),
	}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*ConversationState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	st, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	return cloneState(st)
}

func (m *MemoryStore) Save(ctx context.Context, st *ConversationState) error {
	if st == nil {
		return ErrNilState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return ErrInvalidSession
	}
	clone, err := cloneState(st)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[st.SessionID] = clone
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// cloneState deep-copies through JSON so callers never share mutable state
// with the store.
func cloneState(in *ConversationState) (*ConversationState, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out ConversationState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	out.EnsureParams()
	return &out, nil
}
