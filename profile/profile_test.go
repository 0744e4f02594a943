package profile

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scoutmatch/core"
)

func profileIDs(ps []*core.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func runSourceContract(t *testing.T, src core.ProfileSource) {
	t.Helper()
	ctx := context.Background()

	p, err := src.Get(ctx, "player_1")
	require.NoError(t, err)
	assert.Equal(t, core.RolePlayer, p.Role)
	assert.Equal(t, "Marcus Silva", p.Name)
	assert.Equal(t, 85.0, p.Stats["speed"])
	assert.Equal(t, "Forward", p.Position())

	_, err = src.Get(ctx, "nobody")
	assert.True(t, core.IsNotFound(err), "missing profile err = %v", err)

	players, err := src.ListByRole(ctx, core.RolePlayer, "player_2")
	require.NoError(t, err)
	assert.Equal(t, []string{"player_1", "player_3", "player_4", "player_5", "player_6"}, profileIDs(players))

	clubs, err := src.ListByRole(ctx, core.RoleClub, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"club_1", "club_2"}, profileIDs(clubs))
	assert.EqualValues(t, 87, clubs[0].Preferences["speed"])

	admins, err := src.ListByRole(ctx, core.RoleAdmin, "")
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource()
	src.Put(DemoProfiles()...)
	runSourceContract(t, src)
}

func TestSQLSourceSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "profiles.db")

	src, err := OpenSQLSource(ctx, DialectSQLite, dsn)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Put(ctx, DemoProfiles()...))
	// 重复导入按 id 覆盖
	require.NoError(t, src.Put(ctx, DemoProfiles()...))
	runSourceContract(t, src)

	p, err := src.Get(ctx, "player_3")
	require.NoError(t, err)
	assert.False(t, p.UpdateTime.IsZero())
	assert.NotNil(t, p.Features)
}

func TestSQLSourceUnsupportedDialect(t *testing.T) {
	_, err := OpenSQLSource(context.Background(), "mysql", "")
	assert.True(t, core.IsNotSupported(err))
}

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, project string, features []string, entities []feastsdk.Row) ([]feastsdk.Row, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]feastsdk.Row, len(entities))
	for i := range entities {
		rows[i] = feastsdk.Row{
			"player_form:speed": feastsdk.DoubleVal(99),
			"player_form:fit":   feastsdk.BoolVal(true),
			"player_form:note":  feastsdk.StrVal("n/a"),
		}
	}
	return rows, nil
}

func TestFeastSourceEnriches(t *testing.T) {
	base := NewMemorySource()
	base.Put(DemoProfiles()...)
	fetcher := &fakeFetcher{}
	src := NewFeastSource(base, fetcher, FeastConfig{
		Project:  "scouting",
		Features: []string{"player_form:speed", "player_form:fit", "player_form:note"},
	})

	ctx := context.Background()
	p, err := src.Get(ctx, "player_1")
	require.NoError(t, err)
	assert.Equal(t, 99.0, p.Features["speed"])
	assert.Equal(t, 1.0, p.Features["fit"])
	_, hasNote := p.Features["note"]
	assert.False(t, hasNote, "string features are not numeric")

	orig, _ := base.Get(ctx, "player_1")
	assert.Empty(t, orig.Features, "base profile must not be mutated")

	players, err := src.ListByRole(ctx, core.RolePlayer, "")
	require.NoError(t, err)
	require.Len(t, players, 6)
	assert.Equal(t, 99.0, players[5].Features["speed"])
	assert.Equal(t, int32(2), fetcher.calls.Load(), "one batched call per read")
}

func TestFeastSourceFailOpen(t *testing.T) {
	base := NewMemorySource()
	base.Put(DemoProfiles()...)
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	src := NewFeastSource(base, fetcher, FeastConfig{Features: []string{"player_form:speed"}},
		WithBreakerSettings(gobreaker.Settings{
			Name:    "feast-test",
			Timeout: time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 2
			},
		}))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		p, err := src.Get(ctx, "player_2")
		require.NoError(t, err)
		assert.Empty(t, p.Features)
	}
	assert.Equal(t, int32(2), fetcher.calls.Load(), "breaker opens after two failures")
	assert.Equal(t, "open", src.State())
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, err := New(ctx, Config{Driver: "memory", Demo: true})
	require.NoError(t, err)
	assert.Equal(t, "memory", src.Name())
	runSourceContract(t, src)

	src, err = New(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "p.db"), Demo: true})
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "sql:sqlite", src.Name())
	runSourceContract(t, src)

	_, err = New(ctx, Config{Driver: "mongo"})
	assert.True(t, core.IsNotSupported(err))
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "speed", featureName("player_form:speed"))
	assert.Equal(t, "speed", featureName("speed"))
}
