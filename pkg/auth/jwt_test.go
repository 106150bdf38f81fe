package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *jwtService {
	svc := NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
	}).(*jwtService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now()
	svc := newTestService(now)
	sub := Subject{ID: uuid.New(), Email: "nurse@example.com", Role: "nurse"}

	issued, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(30*time.Minute), issued.ExpiresAt, time.Second)

	claims, err := svc.ValidateAccessToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, claims.UserID)
	assert.Equal(t, "nurse", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestAccessTokenExpires(t *testing.T) {
	now := time.Now()
	svc := newTestService(now)

	issued, err := svc.GenerateAccessToken(Subject{ID: uuid.New(), Role: "staff"})
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = svc.ValidateAccessToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenCannotBeUsedAsAccess(t *testing.T) {
	svc := newTestService(time.Now())

	refresh, err := svc.GenerateRefreshToken(Subject{ID: uuid.New(), Role: "staff"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh.Token)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestClaimsContext(t *testing.T) {
	id := uuid.New()
	ctx := WithClaims(context.Background(), &Claims{UserID: id})

	assert.Equal(t, id, UserIDFromContext(ctx))
	assert.Equal(t, uuid.Nil, UserIDFromContext(context.Background()))
}
