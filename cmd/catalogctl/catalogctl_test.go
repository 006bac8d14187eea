package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPIN(t *testing.T) {
	out, err := run(t, "hash-pin", "2468", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("2468")))
}

func TestImportRequiresAFile(t *testing.T) {
	_, err := run(t, "import")
	assert.ErrorContains(t, err, "--with-barcodes")
}

func TestImportReports(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+uuid.NewString()+"?mode=memory&cache=shared")

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("Product Code,Full Description,VAT Inclusive Price,Bar Code\n107,Milk 1L,21.50,6009509920844\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("Product Code,Full Description,VAT Inclusive Price\n108,Bread,15.00\n,,\n"), 0o644))

	out, err := run(t, "import", "--with-barcodes", a, "--without-barcodes", b)
	require.NoError(t, err)
	assert.Contains(t, out, `"imported_with_barcodes": 1`)
	assert.Contains(t, out, `"imported_without_barcodes": 1`)
}
