package prefs_test

import (
	"context"
	"errors"
	"testing"

	"tvshell/internal/config"
	"tvshell/internal/prefs"
	"tvshell/internal/storage/db"
	"tvshell/internal/storage/model"
	"tvshell/internal/storage/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*prefs.MemoryStore
}

func (failingStore) SetMultiple(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func newResolver(store prefs.Store, dimensions bool) *prefs.Resolver {
	return prefs.NewResolver(prefs.Options{
		Store:      store,
		Defaults:   config.GetDefaultSettings(),
		Dimensions: dimensions,
	})
}

func TestLoadDefaults_FirstLaunch(t *testing.T) {
	r := newResolver(prefs.NewMemoryStore(), true)

	rec := r.LoadDefaults(context.Background())

	assert.Equal(t, prefs.Record{URL: "https://google.com", Width: 3840, Height: 2160}, rec)
}

func TestLoadDefaults_CorruptDimensionFallsBack(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), model.SettingKeyLastWidth, "wide"))
	r := newResolver(store, true)

	rec := r.LoadDefaults(context.Background())

	assert.Equal(t, 3840, rec.Width)
}

func TestCommitLoadRoundTrip(t *testing.T) {
	for _, dimensions := range []bool{true, false} {
		store := prefs.NewMemoryStore()
		r := newResolver(store, dimensions)
		rec := prefs.Record{URL: "http://10.0.0.2:8080/board", Width: 1280, Height: 720}
		if !dimensions {
			rec.Width, rec.Height = 3840, 2160
		}

		require.NoError(t, r.Commit(context.Background(), rec))

		assert.Equal(t, rec, r.LoadDefaults(context.Background()), "dimensions=%v", dimensions)
	}
}

func TestCommit_URLOnlyVariantWritesOneKey(t *testing.T) {
	store := prefs.NewMemoryStore()
	r := newResolver(store, false)

	require.NoError(t, r.Commit(context.Background(), prefs.Record{URL: "https://a.tv", Width: 1, Height: 2}))

	assert.Equal(t, map[string]string{model.SettingKeyLastURL: "https://a.tv"}, store.Snapshot())
}

func TestConfirm_ScenarioE(t *testing.T) {
	store := prefs.NewMemoryStore()
	r := newResolver(store, true)
	prev := r.LoadDefaults(context.Background())

	out := r.Confirm(context.Background(), prefs.Input{URL: "test.tv", Width: "1920", Height: "1080"}, prev, false)

	assert.Equal(t, prefs.OutcomeNavigate, out.Kind)
	assert.Equal(t, "https://test.tv", out.Target)
	assert.Equal(t, map[string]string{
		model.SettingKeyLastURL:    "https://test.tv",
		model.SettingKeyLastWidth:  "1920",
		model.SettingKeyLastHeight: "1080",
	}, store.Snapshot())
}

func TestConfirm_UnparseableWidthUsesPrefill(t *testing.T) {
	r := newResolver(prefs.NewMemoryStore(), true)
	prev := prefs.Record{URL: "https://x.tv", Width: 3840, Height: 1000}

	out := r.Confirm(context.Background(), prefs.Input{URL: "x.tv", Width: "abc", Height: ""}, prev, false)

	assert.Equal(t, 3840, out.Record.Width)
	assert.Equal(t, 1000, out.Record.Height)
}

func TestConfirm_EmptyInputSkips(t *testing.T) {
	store := prefs.NewMemoryStore()
	r := newResolver(store, true)
	prev := r.LoadDefaults(context.Background())

	out := r.Confirm(context.Background(), prefs.Input{URL: "   ", Width: "1", Height: "1"}, prev, false)
	assert.Equal(t, prefs.OutcomeReopenPrompt, out.Kind)

	out = r.Confirm(context.Background(), prefs.Input{URL: ""}, prev, true)
	assert.Equal(t, prefs.OutcomeResume, out.Kind)

	assert.Empty(t, store.Snapshot(), "empty input must not persist anything")
}

func TestConfirm_StoreFailureStillNavigates(t *testing.T) {
	r := newResolver(failingStore{prefs.NewMemoryStore()}, false)

	out := r.Confirm(context.Background(), prefs.Input{URL: "example.com"}, prefs.Record{}, false)

	assert.Equal(t, prefs.OutcomeNavigate, out.Kind)
	assert.Equal(t, "https://example.com", out.Target)
}

func TestCancel(t *testing.T) {
	r := newResolver(nil, false)

	assert.Equal(t, prefs.OutcomeTerminate, r.Cancel(false).Kind)
	assert.Equal(t, prefs.OutcomeResume, r.Cancel(true).Kind)
}

func TestResolver_WithSettingsRepo(t *testing.T) {
	gdb, err := db.New(db.Options{Name: db.MemoryName, Prefix: "test_"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb, model.All()...))

	r := newResolver(repo.NewSettingsRepo(gdb), true)
	prev := r.LoadDefaults(context.Background())
	out := r.Confirm(context.Background(), prefs.Input{URL: "test.tv", Width: "1920", Height: "1080"}, prev, false)
	require.Equal(t, prefs.OutcomeNavigate, out.Kind)

	// 新的解析器模拟进程重启后读取
	again := newResolver(repo.NewSettingsRepo(gdb), true)
	assert.Equal(t, prefs.Record{URL: "https://test.tv", Width: 1920, Height: 1080}, again.LoadDefaults(context.Background()))
}
