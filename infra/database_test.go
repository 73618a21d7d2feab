package infra

import (
	"path/filepath"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestNewDBConnectionSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := NewDBConnection(&config.DB{Driver: config.DriverSQLite, Url: path}, "test", &sample{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&sample{Name: "first"}).Error)
	var got sample
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "first", got.Name)
}

func TestNewDBConnectionRejectsConfig(t *testing.T) {
	tests := []struct {
		name string
		cnf  config.DB
	}{
		{name: "postgres without url", cnf: config.DB{Driver: config.DriverPostgres}},
		{name: "sqlite without path", cnf: config.DB{Driver: config.DriverSQLite}},
		{name: "unknown driver", cnf: config.DB{Driver: "mysql", Url: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDBConnection(&tt.cnf, "test")
			require.Error(t, err)
			assert.Nil(t, db)
		})
	}
}
