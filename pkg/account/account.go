package account

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/superxuu/depu/pkg/token"
)

const sessionTokenLength = 40

const maxNicknameLength = 20

// User is a player known to the server. Users are keyed by nickname so a
// returning player picks up the same identity and chip count.
type User struct {
	ID        string
	Nickname  string
	Chips     int
	CreatedAt time.Time
}

// ErrInvalidNickname is returned when a login nickname is empty or too long
var ErrInvalidNickname = errors.New("nickname must be between 1 and 20 characters")

// Registry tracks users and their active session tokens. All methods are safe
// for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	byID          map[string]*User
	byNickname    map[string]*User
	sessionToUser map[string]string
	userToSession map[string]string
	startingChips int
}

// NewRegistry returns an empty registry. New users start with the given chip
// count.
func NewRegistry(startingChips int) *Registry {
	return &Registry{
		byID:          make(map[string]*User),
		byNickname:    make(map[string]*User),
		sessionToUser: make(map[string]string),
		userToSession: make(map[string]string),
		startingChips: startingChips,
	}
}

// Login finds or creates the user with the given nickname and issues a fresh
// session token. Any previous session for the user is invalidated.
func (r *Registry) Login(nickname string) (User, string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || len([]rune(nickname)) > maxNicknameLength {
		return User{}, "", ErrInvalidNickname
	}

	sessionToken, err := token.Generate(sessionTokenLength)
	if err != nil {
		return User{}, "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(nickname)
	user, ok := r.byNickname[key]
	if !ok {
		user = &User{
			ID:        uuid.New().String(),
			Nickname:  nickname,
			Chips:     r.startingChips,
			CreatedAt: time.Now(),
		}

		r.byID[user.ID] = user
		r.byNickname[key] = user
	}

	if old, ok := r.userToSession[user.ID]; ok {
		delete(r.sessionToUser, old)
	}

	r.sessionToUser[sessionToken] = user.ID
	r.userToSession[user.ID] = sessionToken

	return *user, sessionToken, nil
}

// BySession resolves a session token to its user
func (r *Registry) BySession(sessionToken string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sessionToUser[sessionToken]
	if !ok {
		return User{}, false
	}

	return *r.byID[id], true
}

// ByID returns the user with the given id
func (r *Registry) ByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return User{}, false
	}

	return *user, true
}

// SetChips records a user's chip count after a hand settles
func (r *Registry) SetChips(id string, chips int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		user.Chips = chips
	}
}
