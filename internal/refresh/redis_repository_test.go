package refresh

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_CreateGetDelete(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:refresh:")

	ctx := context.Background()
	tok := &Token{
		Value:     "r1",
		UID:       "u1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Second),
	}

	require.NoError(t, repo.Create(ctx, tok))

	got, err := repo.GetByValue(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, tok.UID, got.UID)

	require.NoError(t, repo.DeleteByValue(ctx, "r1"))
	got2, err := repo.GetByValue(ctx, "r1")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:refresh:")

	ctx := context.Background()
	tok := &Token{
		Value:     "r-exp",
		UID:       "u1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, tok))

	// advance miniredis' clock past the TTL
	m.FastForward(2 * time.Second)

	got, err := repo.GetByValue(ctx, "r-exp")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_StoredExpiryWins(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")

	// an already-expired token gets the minimal TTL but must still read as missing
	ctx := context.Background()
	tok := &Token{
		Value:     "r-old",
		UID:       "u1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, repo.Create(ctx, tok))

	got, err := repo.GetByValue(ctx, "r-old")
	require.NoError(t, err)
	require.Nil(t, got)
}
