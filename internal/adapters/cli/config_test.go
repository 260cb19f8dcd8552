package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://bot:xxxxx@db:5432/spacetraders",
		maskPassword("postgres://bot:hunter2@db:5432/spacetraders"))
	assert.Equal(t, "postgres://bot@db:5432/spacetraders",
		maskPassword("postgres://bot@db:5432/spacetraders"))
	assert.Equal(t, "spacetraders.db", maskPassword("spacetraders.db"))
}

func TestRootCommandRegistersGroups(t *testing.T) {
	root := NewRootCommand()

	for _, path := range [][]string{
		{"sync", "all"},
		{"market", "refresh"},
		{"trade", "routes"},
		{"ship", "sleep-until"},
		{"behavior", "start"},
		{"daemon", "run"},
		{"ledger", "profit-loss"},
	} {
		cmd, _, err := root.Find(path)
		if assert.NoError(t, err, path) {
			assert.Equal(t, path[len(path)-1], cmd.Name())
		}
	}
}
