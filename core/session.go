package core

import (
	"context"
	"encoding/json"
	"sync"
)

// Customer is the authenticated customer's profile as issued by the
// customer backend at login.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session holds the bearer token and customer profile for the current
// visit. Both are write-through persisted under their own slots; the
// token slot is a raw string rather than JSON, matching the storage
// layout of the browser client this replaced.
type Session struct {
	mu     sync.Mutex
	token  string
	user   *Customer
	store  Store
	logger Logger
}

// NewSession creates a session hydrated from the store. A corrupt user
// slot is logged and removed so it cannot poison later loads.
func NewSession(ctx context.Context, store Store, logger Logger) *Session {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	s := &Session{store: store, logger: logger}

	token, err := store.Get(ctx, KeyToken)
	if err != nil {
		logger.Warn("Failed to load saved token", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		s.token = token
	}

	raw, err := store.Get(ctx, KeyUser)
	if err != nil {
		logger.Warn("Failed to load saved user", map[string]interface{}{
			"error": err.Error(),
		})
		return s
	}
	if raw != "" {
		var user Customer
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			logger.Warn("Removing corrupt user slot", map[string]interface{}{
				"key":   KeyUser,
				"error": err.Error(),
			})
			_ = store.Delete(ctx, KeyUser)
		} else {
			s.user = &user
		}
	}
	return s
}

// Token returns the bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores the token; an empty token clears the slot.
func (s *Session) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	var err error
	if token == "" {
		err = s.store.Delete(ctx, KeyToken)
	} else {
		err = s.store.Set(ctx, KeyToken, token)
	}
	if err != nil {
		s.logger.Error("Failed to persist token", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// User returns the customer profile, nil when none is known.
func (s *Session) User() *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// SetUser stores the profile; nil clears the slot.
func (s *Session) SetUser(ctx context.Context, user *Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	var err error
	if user == nil {
		err = s.store.Delete(ctx, KeyUser)
	} else {
		err = setJSON(ctx, s.store, KeyUser, user)
	}
	if err != nil {
		s.logger.Error("Failed to persist user", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// CustomerName returns the display name for order headers, falling back
// to "Guest" when no profile is loaded.
func (s *Session) CustomerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && s.user.Name != "" {
		return s.user.Name
	}
	return "Guest"
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Logout clears the token and profile, in memory and in the store.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	if err := s.store.Delete(ctx, KeyToken); err != nil {
		s.logger.Error("Failed to remove token", map[string]interface{}{"error": err.Error()})
	}
	if err := s.store.Delete(ctx, KeyUser); err != nil {
		s.logger.Error("Failed to remove user", map[string]interface{}{"error": err.Error()})
	}
	s.logger.Info("Logged out", nil)
}
