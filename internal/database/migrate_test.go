package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_init_schema", all[0].String())
	for _, table := range []string{"users", "messages", "follows", "likes"} {
		assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS "+table)
		assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS "+table)
	}
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_b.up.sql":   {Data: []byte("B UP")},
		"migrations/000002_b.down.sql": {Data: []byte("B DOWN")},
		"migrations/000001_a.up.sql":   {Data: []byte("A UP")},
		"migrations/000001_a.down.sql": {Data: []byte("A DOWN")},
		"migrations/README.md":         {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "B DOWN", got[1].DownScript)
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql": {Data: []byte("A UP")},
	}
	_, err := LoadMigrations(fsys)
	assert.Error(t, err)
}

type fakeMigrationStore struct {
	applied []int
	ran     []int
	removed []int
	failOn  int
}

func (f *fakeMigrationStore) GetAppliedMigrations(context.Context) ([]int, error) {
	return f.applied, nil
}

func (f *fakeMigrationStore) ApplyMigration(_ context.Context, version int, _, _ string) error {
	if version == f.failOn {
		return errors.New("boom")
	}
	f.ran = append(f.ran, version)
	f.applied = append(f.applied, version)
	return nil
}

func (f *fakeMigrationStore) RemoveMigration(_ context.Context, version int, _ string) error {
	f.removed = append(f.removed, version)
	return nil
}

func TestApplyPending(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}

	store := &fakeMigrationStore{applied: []int{1}}
	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Equal(t, []int{2, 3}, store.ran)

	// Second run is a no-op.
	store.ran = nil
	require.NoError(t, applyPending(context.Background(), store, registered))
	assert.Empty(t, store.ran)
}

func TestApplyPending_StopsOnFailure(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	store := &fakeMigrationStore{failOn: 2}

	err := applyPending(context.Background(), store, registered)
	assert.Error(t, err)
	assert.Equal(t, []int{1}, store.ran)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 5}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000005, 000007")
}

func TestRollback(t *testing.T) {
	registered := []Migration{{Version: 1, DownScript: "drop a"}, {Version: 2, DownScript: "drop b"}}
	ctx := context.Background()

	store := &fakeMigrationStore{applied: []int{1}}
	require.NoError(t, rollback(ctx, store, registered, 1))
	assert.Equal(t, []int{1}, store.removed)

	err := rollback(ctx, store, registered, 2)
	assert.ErrorContains(t, err, "has not been applied")

	err = rollback(ctx, store, registered, 9)
	assert.ErrorContains(t, err, "not found")
	assert.Equal(t, []int{1}, store.removed)
}
