package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE state (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func insertState(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO state(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

func sampleRecord() *models.SessionRecord {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.SessionRecord{
		User: models.UserProfile{
			Username:    "joe",
			DisplayName: "Joe",
			Role:        models.RoleUser,
			Status:      models.StatusActive,
		},
		DeviceID:  "device_1_abc",
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
		Token:     "tok",
	}
}

func TestSession_AbsentReturnsNilNil(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))

	rec, err := s.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestSession_SaveThenGet(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	want := sampleRecord()
	require.NoError(t, s.SaveSession(ctx, want))

	got, err := s.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.User, got.User)
	assert.Equal(t, want.DeviceID, got.DeviceID)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, want.Token, got.Token)
}

func TestSession_CorruptDataTreatedAsAbsent(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db)
	insertState(t, db, KeySession, []byte(`{not json!`))

	rec, err := s.Session(context.Background())
	require.NoError(t, err, "corruption must never surface to the caller")
	require.Nil(t, rec)
}

func TestClearSession_RemovesRecord_AndIsIdempotent(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, sampleRecord()))
	require.NoError(t, s.ClearSession(ctx))
	require.NoError(t, s.ClearSession(ctx))

	rec, err := s.Session(ctx)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestRegistry_AbsentYieldsEmptyMap(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))

	reg, err := s.Registry(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Empty(t, reg)
}

func TestRegistry_RoundTrip(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	exp := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	want := map[string]models.RegistryEntry{
		"joe":  {DeviceID: "device_1", ExpiresAt: exp},
		"anna": {DeviceID: "device_2", ExpiresAt: exp.Add(time.Minute)},
	}
	require.NoError(t, s.SaveRegistry(ctx, want))

	got, err := s.Registry(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "device_1", got["joe"].DeviceID)
	assert.True(t, exp.Equal(got["joe"].ExpiresAt))
}

func TestRegistry_CorruptDataYieldsEmptyMap(t *testing.T) {
	db := setupDB(t)
	s := NewSQLiteStore(db)
	insertState(t, db, KeyRegistry, []byte(`[broken`))

	reg, err := s.Registry(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Empty(t, reg)
}

func TestDeviceID_RoundTrip(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	id, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.SaveDeviceID(ctx, "device_42"))

	id, err = s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device_42", id)
}

func TestSaveLoginState_WritesBothKeys(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	rec := sampleRecord()
	reg := map[string]models.RegistryEntry{
		rec.User.Username: {DeviceID: rec.DeviceID, ExpiresAt: rec.ExpiresAt},
	}
	require.NoError(t, s.SaveLoginState(ctx, rec, reg))

	got, err := s.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	gotReg, err := s.Registry(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.DeviceID, gotReg[rec.User.Username].DeviceID)
}

func TestOpenSQLite_RunsMigrations(t *testing.T) {
	s, err := OpenSQLite(context.Background(), "file:openstate?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SaveDeviceID(context.Background(), "device_7"))

	id, err := s.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "device_7", id)
}
