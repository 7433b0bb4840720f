package broadcastdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilodaat/automat/internal/core/domain"
)

func seed(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "pautas.db")
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE pautas_tv (id_pauta_tv INTEGER PRIMARY KEY, canal TEXT, programa TEXT, inicio DATETIME)`,
		`CREATE TABLE pautas_radio (id_pauta_radio INTEGER PRIMARY KEY, emisora TEXT, hora_local TEXT, captura TEXT)`,
		`INSERT INTO pautas_tv VALUES (42, 'Canal N', 'Noticias', '2024-03-06 02:30:00')`,
		`INSERT INTO pautas_radio VALUES (7, 'RPP', '2024-03-05 18:30:00', '2024-03-05 23:30:00')`,
		`INSERT INTO pautas_radio VALUES (8, 'RPP', '2024-03-05 19:00:00', NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return dsn
}

func TestFindRecordTV(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t))
	require.NoError(t, err)

	rec, err := s.FindRecord(context.Background(), domain.SourceBroadcastTV, 42)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(42), rec.ID)
	assert.True(t, rec.CapturedAt.Equal(time.Date(2024, 3, 6, 2, 30, 0, 0, time.UTC)))
}

func TestFindRecordRadioTextTimestamp(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t))
	require.NoError(t, err)

	rec, err := s.FindRecord(context.Background(), domain.SourceBroadcastRadio, 7)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC), rec.CapturedAt)
}

func TestFindRecordMissingIsNotAnError(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t))
	require.NoError(t, err)

	rec, err := s.FindRecord(context.Background(), domain.SourceBroadcastTV, 999)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindRecordNullTimestamp(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t))
	require.NoError(t, err)

	_, err = s.FindRecord(context.Background(), domain.SourceBroadcastRadio, 8)
	assert.Error(t, err)
}

func TestFindRecordUnknownKind(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t))
	require.NoError(t, err)

	_, err = s.FindRecord(context.Background(), domain.SourceOnlineVideo, 1)
	assert.Error(t, err)
}

func TestFindRecordNamedTimeColumn(t *testing.T) {
	s, err := NewStore("sqlite3", seed(t), WithTimeColumn("hora_local"))
	require.NoError(t, err)

	rec, err := s.FindRecord(context.Background(), domain.SourceBroadcastRadio, 8)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC), rec.CapturedAt)
}

func TestQueryPlaceholders(t *testing.T) {
	my, _ := NewStore(DriverMySQL, "dsn")
	pg, _ := NewStore(DriverPostgres, "dsn")
	named, _ := NewStore(DriverMySQL, "dsn", WithTimeColumn("fecha_captura"))

	assert.Equal(t, "SELECT * FROM pautas_tv WHERE id_pauta_tv = ?", my.query(tables[domain.SourceBroadcastTV]))
	assert.Equal(t, "SELECT * FROM pautas_radio WHERE id_pauta_radio = $1", pg.query(tables[domain.SourceBroadcastRadio]))
	assert.Equal(t, "SELECT fecha_captura FROM pautas_tv WHERE id_pauta_tv = ?", named.query(tables[domain.SourceBroadcastTV]))
}

func TestNewStoreRejectsBadTimeColumn(t *testing.T) {
	_, err := NewStore(DriverMySQL, "dsn", WithTimeColumn("x; DROP TABLE pautas_tv"))
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN("db.local:3306", "reader", "s3cret", "medios")
	assert.Contains(t, dsn, "reader:s3cret@tcp(db.local:3306)/medios")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(DriverMySQL, "")
	assert.Error(t, err)
}
