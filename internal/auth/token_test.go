package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/judyrop/restaurant-backend/models"
)

func TestTokenRoundTrip(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice", Role: models.RoleCustomer}

	token, exp, err := p.Issue(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := p.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleCustomer, claims.Role)
}

func TestTokenExpiry(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)
	user := &models.User{ID: 7, Username: "alice", Role: models.RoleCustomer}

	token, _, err := p.Issue(user)
	assert.NoError(t, err)

	// Shift the verifier's clock past the expiry window.
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenProvider("secret-one", time.Hour)
	verifier := NewTokenProvider("secret-two", time.Hour)
	user := &models.User{ID: 7, Username: "alice", Role: models.RoleCustomer}

	token, _, err := issuer.Issue(user)
	assert.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	p := NewTokenProvider("test-secret", time.Hour)

	_, err := p.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
