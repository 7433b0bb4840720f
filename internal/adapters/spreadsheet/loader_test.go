package spreadsheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danilodaat/automat/internal/core/domain"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "keywords.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadMergesClientsAndFlagsSectors(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"cliente", "palabras", "email"},
		{"Banco Andino", "BCP; crédito ;", "a@banco.pe, b@banco.pe"},
		{"Sector Minería", "Minería", ""},
		{"Banco Andino", "hipoteca", "otro@banco.pe"},
		{"", "huérfana", ""},
	})
	logger, _ := logtest.NewNullLogger()

	dir := NewLoader(path, logger).Load(context.Background())

	require.Equal(t, 2, dir.Len())
	assert.Equal(t, domain.ClientKeywords{
		Client:   "Banco Andino",
		Keywords: []string{"BCP", "crédito", "hipoteca"},
		Contacts: []string{"a@banco.pe", "b@banco.pe"},
	}, dir.Clients[0])
	assert.Equal(t, "Sector Minería", dir.Clients[1].Client)
	assert.True(t, dir.Clients[1].Sector)
	assert.Equal(t, []string{"Minería"}, dir.Clients[1].Keywords)
}

func TestLoadMissingFileYieldsEmptyDirectory(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	dir := NewLoader(filepath.Join(t.TempDir(), "absent.xlsx"), logger).Load(context.Background())

	assert.Zero(t, dir.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "keyword workbook not found", hook.LastEntry().Message)
}

func TestLoadMalformedFileYieldsEmptyDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))
	logger, _ := logtest.NewNullLogger()

	assert.Zero(t, NewLoader(path, logger).Load(context.Background()).Len())
}

func TestParseSkipsHeaderOnly(t *testing.T) {
	assert.Zero(t, Parse([][]string{{"cliente", "palabras", "email"}}).Len())
	assert.Zero(t, Parse(nil).Len())
}
