package repository

import (
    "context"
    "fmt"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-flow/internal/model"
)

func TestMemoryKV(t *testing.T) {
    ctx := context.Background()

    t.Run("SetGetDelete", func(t *testing.T) {
        kv := NewMemoryKV(0)
        require.NoError(t, kv.Set(ctx, "s1:movie-title", "Alpha"))

        v, err := kv.Get(ctx, "s1:movie-title")
        require.NoError(t, err)
        assert.Equal(t, "Alpha", v)

        require.NoError(t, kv.Delete(ctx, "s1:movie-title", "missing"))
        _, err = kv.Get(ctx, "s1:movie-title")
        assert.ErrorIs(t, err, ErrKeyNotFound)
    })

    t.Run("KeysByPrefix", func(t *testing.T) {
        kv := NewMemoryKV(0)
        for _, k := range []string{"s1:seat_formseat-a2", "s1:seat_formseat-a1", "s1:movie-title", "s2:seat_formseat-a1"} {
            require.NoError(t, kv.Set(ctx, k, "x"))
        }
        keys, err := kv.Keys(ctx, "s1:seat_form")
        require.NoError(t, err)
        assert.Equal(t, []string{"s1:seat_formseat-a1", "s1:seat_formseat-a2"}, keys)
    })

    t.Run("Expiry", func(t *testing.T) {
        kv := NewMemoryKV(time.Minute)
        now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
        kv.now = func() time.Time { return now }
        require.NoError(t, kv.Set(ctx, "k", "v"))

        now = now.Add(2 * time.Minute)
        _, err := kv.Get(ctx, "k")
        assert.ErrorIs(t, err, ErrKeyNotFound)
        keys, err := kv.Keys(ctx, "")
        require.NoError(t, err)
        assert.Empty(t, keys)
        assert.Equal(t, 0, kv.Len())
    })

    t.Run("SweepOnSet", func(t *testing.T) {
        kv := NewMemoryKV(time.Minute)
        now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
        kv.now = func() time.Time { return now }
        for i := 0; i < 1000; i++ {
            require.NoError(t, kv.Set(ctx, fmt.Sprintf("s%d:movie-title", i), "Alpha"))
        }
        require.Equal(t, 1000, kv.Len())

        now = now.Add(2 * time.Minute)
        require.NoError(t, kv.Probe(ctx))
        assert.Equal(t, 0, kv.Len())
    })

    t.Run("Probe", func(t *testing.T) {
        kv := NewMemoryKV(0)
        require.NoError(t, kv.Probe(ctx))
        assert.Equal(t, 0, kv.Len())
    })
}

func TestRedisKVWithoutClient(t *testing.T) {
    kv := NewRedisKV(nil, "", time.Hour)
    ctx := context.Background()
    assert.ErrorIs(t, kv.Probe(ctx), ErrBackendUnavailable)
    assert.ErrorIs(t, kv.Set(ctx, "a", "b"), ErrBackendUnavailable)
    _, err := kv.Keys(ctx, "a")
    assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestEscaping(t *testing.T) {
    assert.Equal(t, `bk:s\*1\?`, escapeGlob("bk:s*1?"))
    assert.Equal(t, `seat!_form!%!!`, escapeLike("seat_form%!"))
}

func TestMovieRepo(t *testing.T) {
    ctx := context.Background()
    repo, err := LoadMovieRepo("")
    require.NoError(t, err)

    all := repo.List(ctx, MovieFilter{})
    require.NotEmpty(t, all)
    assert.Equal(t, "Alpha", all[0].Title)

    drama := repo.List(ctx, MovieFilter{Genre: "DRAMA", Rating: "all"})
    for _, m := range drama {
        assert.Contains(t, m.Genres, "drama")
    }
    assert.Len(t, drama, 2)

    assert.Empty(t, repo.List(ctx, MovieFilter{Genre: "horror", Rating: "G"}))

    m, err := repo.GetByTitle(ctx, "Alpha")
    require.NoError(t, err)
    assert.Equal(t, "PG-13", m.Rating)

    _, err = repo.GetByTitle(ctx, "Omega")
    assert.ErrorIs(t, err, ErrMovieNotFound)

    _, err = repo.FindShowtime(ctx, "Alpha", "Fri, Oct 16", "7:30 PM")
    assert.NoError(t, err)
    _, err = repo.FindShowtime(ctx, "Alpha", "Fri, Oct 16", "9:45 PM")
    assert.ErrorIs(t, err, ErrShowtimeNotFound)

    assert.Contains(t, repo.Genres(), "horror")
    assert.Contains(t, repo.Ratings(), "R")
}

func TestMySQLKVExpiry(t *testing.T) {
    kv := NewMySQLKV(nil, 0)
    clause, args := kv.liveClause()
    assert.Empty(t, clause)
    assert.Nil(t, args)
    n, err := kv.PurgeExpired(context.Background())
    require.NoError(t, err)
    assert.Zero(t, n)

    kv = NewMySQLKV(nil, 90*time.Minute+time.Millisecond)
    assert.Equal(t, int64(5401), kv.ttlSeconds())
    clause, args = kv.liveClause()
    assert.Contains(t, clause, "updated_at > NOW() - INTERVAL ? SECOND")
    assert.Equal(t, []interface{}{int64(5401)}, args)
}

func TestNewMovieRepoKeepsCallerGenres(t *testing.T) {
    genres := []string{" Drama ", "COMEDY"}
    repo := NewMovieRepo([]model.Movie{{ID: "alpha", Title: "Alpha", Genres: genres}})

    assert.Equal(t, []string{" Drama ", "COMEDY"}, genres)
    m, err := repo.GetByTitle(context.Background(), "Alpha")
    require.NoError(t, err)
    assert.Equal(t, []string{"drama", "comedy"}, m.Genres)
}

func TestSeatLayout(t *testing.T) {
    seats := SeatLayout{Rows: 2, Cols: 3}.Seats()
    require.Len(t, seats, 6)
    assert.Equal(t, "seat-a1", seats[0].ID)
    assert.Equal(t, "B3", seats[5].Label)

    s, ok := DefaultSeatLayout.Lookup("seat-h12")
    assert.True(t, ok)
    assert.Equal(t, "H12", s.Label)
    _, ok = DefaultSeatLayout.Lookup("seat-z1")
    assert.False(t, ok)

    assert.Equal(t, "AA", rowLabel(26))
}
