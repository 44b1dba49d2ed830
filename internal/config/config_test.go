package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	assert.Nil(t, ParseCSV(""))
	assert.Equal(t, []string{"a", "b"}, ParseCSV(" a, ,b ,"))
}

func TestParseFallbacks(t *testing.T) {
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-5s", time.Minute))
	assert.Equal(t, 7, parseInt("7", 20))
	assert.Equal(t, 20, parseInt("0", 20))
	assert.Equal(t, 20, parseInt("many", 20))
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DEFAULT_RIDDLE_WINDOW", "48h")
	t.Setenv("DEFAULT_TEAM_MAX_MEMBERS", "8")
	t.Setenv("IMAGE_HOSTS", "cdn.riddle.gg, images.riddle.gg")
	t.Setenv("STATUS_SWEEP_INTERVAL", "bogus")

	cfg := Load()
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 48*time.Hour, cfg.DefaultRiddleWindow)
	assert.Equal(t, 8, cfg.DefaultTeamMaxMembers)
	assert.Equal(t, []string{"cdn.riddle.gg", "images.riddle.gg"}, cfg.ImageHosts)
	assert.Equal(t, time.Minute, cfg.StatusSweepInterval)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "TimeZone=UTC")
}
