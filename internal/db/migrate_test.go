package db_test

import (
	"os"
	"testing"
	"testing/fstest"

	"shellfish-ops/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_seed.sql":  {Data: []byte("INSERT INTO t VALUES (1);")},
		"001_init.sql":  {Data: []byte("CREATE TABLE t (id int);")},
		"README.md":     {Data: []byte("ignored")},
		"archive/x.sql": {Data: []byte("ignored")},
	}

	ms, err := db.LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, ms, 2)

	assert.Equal(t, "001", ms[0].Version)
	assert.Equal(t, "001_init.sql", ms[0].Filename)
	assert.Equal(t, "CREATE TABLE t (id int);", ms[0].SQL)
	assert.Len(t, ms[0].Checksum, 64)
	assert.Equal(t, "002", ms[1].Version)
	assert.NotEqual(t, ms[0].Checksum, ms[1].Checksum)
}

func TestLoadMigrations_Errors(t *testing.T) {
	_, err := db.LoadMigrations(fstest.MapFS{
		"001_init.sql":  {Data: []byte("")},
		"001_other.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "duplicate migration version 001")

	_, err = db.LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("")}})
	assert.ErrorContains(t, err, "invalid migration filename")
}

func TestRepositoryMigrations(t *testing.T) {
	ms, err := db.LoadMigrations(os.DirFS("../../migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, "001_init.sql", ms[0].Filename)
}
