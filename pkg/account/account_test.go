package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Login(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(1000)

	user, sessionToken, err := r.Login("alice")
	a.NoError(err)
	a.NotEmpty(user.ID)
	a.Equal("alice", user.Nickname)
	a.Equal(1000, user.Chips)
	a.Len(sessionToken, 40)

	found, ok := r.BySession(sessionToken)
	a.True(ok)
	a.Equal(user.ID, found.ID)

	// a second login keeps the identity but rotates the session
	again, newToken, err := r.Login("ALICE")
	a.NoError(err)
	a.Equal(user.ID, again.ID)
	a.NotEqual(sessionToken, newToken)

	_, ok = r.BySession(sessionToken)
	a.False(ok)
	_, ok = r.BySession(newToken)
	a.True(ok)
}

func TestRegistry_Login_invalidNickname(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(1000)

	_, _, err := r.Login("   ")
	a.Equal(ErrInvalidNickname, err)

	_, _, err = r.Login("this-nickname-is-way-too-long-to-accept")
	a.Equal(ErrInvalidNickname, err)
}

func TestRegistry_SetChips(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry(1000)

	user, _, err := r.Login("bob")
	a.NoError(err)

	r.SetChips(user.ID, 1500)

	found, ok := r.ByID(user.ID)
	a.True(ok)
	a.Equal(1500, found.Chips)

	_, ok = r.ByID("nope")
	a.False(ok)
}
