package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainauth "autorent/internal/domain/auth"
	domainuser "autorent/internal/domain/user"
)

// UserRepository stores users in memory. Soft-deleted users stay in the map
// but are invisible to reads.
type UserRepository struct {
	mu    sync.RWMutex
	byID  map[domainuser.ID]*domainuser.User
	index map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:  make(map[domainuser.ID]*domainuser.User),
		index: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.byID[id]; ok && !u.Deleted {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.index[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	if u, ok := r.byID[id]; ok && !u.Deleted {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil || strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	emailKey := domainuser.NormalizeEmail(u.Email)
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.index[emailKey]; ok && existingID != u.ID {
		if existing, found := r.byID[existingID]; found && !existing.Deleted {
			return domainuser.ErrEmailAlreadyUsed
		}
	}
	if prev, ok := r.byID[u.ID]; ok {
		prevKey := domainuser.NormalizeEmail(prev.Email)
		if prevKey != emailKey {
			delete(r.index, prevKey)
		}
	}
	r.index[emailKey] = u.ID
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) List(ctx context.Context, f domainuser.Filter) ([]*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainuser.User, 0, len(r.byID))
	for _, u := range r.byID {
		if u.Deleted {
			continue
		}
		if f.Email != "" && u.Email != domainuser.NormalizeEmail(f.Email) {
			continue
		}
		if f.FullName != "" && !strings.EqualFold(u.FullName, f.FullName) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		matches = append(matches, cloneUser(u))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, f.Page, f.Limit), nil
}

func cloneUser(u *domainuser.User) *domainuser.User {
	clone := *u
	return &clone
}

// SessionStore keeps bearer sessions in memory.
type SessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.items[session.Token] = &clone
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.items {
		if session.UserID == userID {
			delete(s.items, token)
		}
	}
	return nil
}
