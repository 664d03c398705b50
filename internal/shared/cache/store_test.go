package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

const testPrefix = "deskgate_cache_"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(Config{DurablePrefix: testPrefix}, nil, nil, nil, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestStoreWithRedis(t *testing.T) (*Store, *miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(Config{DurablePrefix: testPrefix}, client, nil, nil, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr, client
}

type testTicket struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
}

func TestStore_SetGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testTicket{ID: 7, Subject: "printer offline"}
	require.NoError(t, s.Set(ctx, "ticket_detail_7", want, time.Minute))

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	found, err = s.Get(ctx, "ticket_detail_8", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Set_InvalidTTL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Second} {
		err := s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, ttl)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTTL)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}

	// Nothing may have been stored.
	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Expiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, 30*time.Millisecond))

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(60 * time.Millisecond)

	found, err = s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry must not be readable past its expiry")
	assert.Equal(t, 0, s.Len(), "expired entry must be evicted on read")
}

func TestStore_Set_OverwriteExtendsExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7, Subject: "old"}, 30*time.Millisecond))
	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7, Subject: "new"}, time.Minute))

	time.Sleep(60 * time.Millisecond)

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	require.True(t, found, "overwrite must replace the old expiry")
	assert.Equal(t, "new", got.Subject)
}

func TestStore_Get_ReturnsFreshCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tickets_open_2025_42", []testTicket{{ID: 1}, {ID: 2}}, time.Minute))

	var first []testTicket
	found, err := s.Get(ctx, "tickets_open_2025_42", &first)
	require.NoError(t, err)
	require.True(t, found)

	// Mutating what a caller got back must not leak into the cache.
	first[0].ID = 999

	var second []testTicket
	found, err = s.Get(ctx, "tickets_open_2025_42", &second)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), second[0].ID)
}

func TestStore_Get_IncompatibleDest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))

	var wrong []string
	found, err := s.Get(ctx, "ticket_detail_7", &wrong)
	assert.False(t, found)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestStore_Invalidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))
	s.Invalidate(ctx, "ticket_detail_7")

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// Idempotent on absent keys.
	s.Invalidate(ctx, "ticket_detail_7")
}

func TestStore_InvalidatePattern(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keys := []string{
		"tickets_open_2025_42",
		"tickets_closed_2024_42",
		"tickets_open_2025_77",
		"tickets_open_2025_142",
		"ticket_detail_7",
	}
	for _, key := range keys {
		require.NoError(t, s.Set(ctx, key, testTicket{ID: 1}, time.Minute))
	}

	removed := s.InvalidatePattern(ctx, "tickets_*_42")
	assert.Equal(t, 2, removed)

	var got testTicket
	for key, want := range map[string]bool{
		"tickets_open_2025_42":   false,
		"tickets_closed_2024_42": false,
		"tickets_open_2025_77":   true,  // other user untouched
		"tickets_open_2025_142":  true,  // suffix must match the whole identity segment
		"ticket_detail_7":        true,  // other namespace untouched
	} {
		found, err := s.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.Equal(t, want, found, "key %s", key)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))
	require.NoError(t, s.Set(ctx, "request_types", []string{"incident"}, time.Minute))

	s.Clear(ctx)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Cleanup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_1", testTicket{ID: 1}, 20*time.Millisecond))
	require.NoError(t, s.Set(ctx, "ticket_detail_2", testTicket{ID: 2}, 20*time.Millisecond))
	require.NoError(t, s.Set(ctx, "ticket_detail_3", testTicket{ID: 3}, time.Minute))

	time.Sleep(50 * time.Millisecond)

	removed := s.Cleanup(ctx)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_3", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_Janitor(t *testing.T) {
	s := NewStore(Config{DurablePrefix: testPrefix, CleanupInterval: 20 * time.Millisecond}, nil, nil, nil, nil)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, 10*time.Millisecond))

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 10*time.Millisecond)

	// Close twice must be safe.
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

// --- durable tier ---

func TestStore_DurableEnvelope(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7, Subject: "vpn"}, time.Minute))

	raw, err := mr.Get(testPrefix + "ticket_detail_7")
	require.NoError(t, err)

	var env struct {
		Value  testTicket `json:"value"`
		Expiry int64      `json:"expiry"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, int64(7), env.Value.ID)
	assert.Greater(t, env.Expiry, time.Now().UnixMilli())
}

func TestStore_DurableWriteThroughOnRead(t *testing.T) {
	s1, mr, client := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s1.Set(ctx, "ticket_detail_7", testTicket{ID: 7, Subject: "vpn"}, time.Minute))

	// A fresh store over the same Redis stands in for a restarted
	// process: its volatile tier is empty.
	s2 := NewStore(Config{DurablePrefix: testPrefix}, client, nil, nil, nil)
	defer func() { _ = s2.Close() }()

	var got testTicket
	found, err := s2.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	require.True(t, found, "durable entry must survive a restart")
	assert.Equal(t, "vpn", got.Subject)
	assert.Equal(t, 1, s2.Len(), "durable hit must repopulate the volatile tier")

	// With the durable tier gone, the promoted copy still serves reads.
	mr.Close()
	found, err = s2.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_NonDurableKeysNeverPersist(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "session_state_abc", "transient", time.Minute))

	assert.False(t, mr.Exists(testPrefix+"session_state_abc"))
	assert.Empty(t, mr.Keys())

	var got string
	found, err := s.Get(ctx, "session_state_abc", &got)
	require.NoError(t, err)
	assert.True(t, found, "volatile tier must still serve the key")
}

func TestStore_DurableStaleEntryDiscarded(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	stale, err := json.Marshal(durableEnvelope{
		Value:  json.RawMessage(`{"id":7}`),
		Expiry: time.Now().Add(-time.Minute).UnixMilli(),
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set(testPrefix+"ticket_detail_7", string(stale)))

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(testPrefix+"ticket_detail_7"), "stale durable entry must be deleted")
}

func TestStore_DurableMalformedEntryDiscarded(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(testPrefix+"ticket_detail_7", "not json"))

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(testPrefix+"ticket_detail_7"))
}

func TestStore_DurableFailuresAbsorbed(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	mr.Close()

	// Every operation must keep working on the volatile tier alone.
	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))

	var got testTicket
	found, err := s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.True(t, found)

	s.Invalidate(ctx, "ticket_detail_7")
	s.InvalidatePattern(ctx, "tickets_*_42")
	s.Clear(ctx)

	found, err = s.Get(ctx, "ticket_detail_7", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_InvalidatePattern_SweepsDurableTier(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tickets_open_2025_42", []testTicket{{ID: 1}}, time.Minute))
	require.NoError(t, s.Set(ctx, "tickets_closed_2024_42", []testTicket{{ID: 2}}, time.Minute))
	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))

	s.InvalidatePattern(ctx, "tickets_*_42")

	assert.False(t, mr.Exists(testPrefix+"tickets_open_2025_42"))
	assert.False(t, mr.Exists(testPrefix+"tickets_closed_2024_42"))
	assert.True(t, mr.Exists(testPrefix+"ticket_detail_7"))
}

func TestStore_Clear_OnlyTouchesOwnNamespace(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))
	require.NoError(t, mr.Set("other_app_data", "keep me"))

	s.Clear(ctx)

	assert.False(t, mr.Exists(testPrefix+"ticket_detail_7"))
	assert.True(t, mr.Exists("other_app_data"))
}

func TestStore_DurableRedisTTLSet(t *testing.T) {
	s, mr, _ := newTestStoreWithRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ticket_detail_7", testTicket{ID: 7}, time.Minute))

	ttl := mr.TTL(testPrefix + "ticket_detail_7")
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestStore_ErrInvalidTTLMatchesTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrInvalidTTL, apperrors.ErrInvalidArgument))
}
