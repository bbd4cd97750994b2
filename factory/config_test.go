package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/factory"
)

const validConfig = `{
	"rotation": ["DELTA", "ALPHA", "BRAVO", "CHARLIE"],
	"epoch": "2026-01-01",
	"quotas": {"PTS": 1, "CPC": 2},
	"holidays": [{"date": "2026-04-21", "name": "Tiradentes"}],
	"blocked_dates": [{"date": "2026-12-31", "reason": "year-end operation"}],
	"members": [
		{"id": "m-001", "name": "Sgt. Moreira", "team": "ALPHA",
		 "matricula": "113377-1", "birthday": "03-14"}
	]
}`

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := factory.ParseConfig([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Cycle.Length())
	assert.Equal(t, "2026-01-01", cfg.Cycle.Epoch().String())
	assert.Equal(t, 1, cfg.Quotas.Max(credit.CategoryPTS))
	assert.Equal(t, 2, cfg.Quotas.Max(credit.CategoryCPC))
	assert.Equal(t, credit.DefaultQuota, cfg.Quotas.Max("UNKNOWN"))

	require.Len(t, cfg.Holidays, 1)
	assert.Equal(t, "Tiradentes", cfg.Holidays[0].Name)
	require.Len(t, cfg.BlockedDates, 1)
	require.Len(t, cfg.Members, 1)
	assert.Equal(t, time.March, cfg.Members[0].Birthday.Month)
	assert.Equal(t, 14, cfg.Members[0].Birthday.Day)
}

func TestParseConfig_Failures_AreConfigurationErrors(t *testing.T) {
	// Every malformed input fails at load time with ErrConfiguration,
	// never as a per-request error later.

	cases := []struct {
		name string
		json string
	}{
		{"malformed json", `{`},
		{"empty rotation", `{"rotation": [], "epoch": "2026-01-01"}`},
		{"blank team", `{"rotation": ["ALPHA", " "], "epoch": "2026-01-01"}`},
		{"bad epoch", `{"rotation": ["ALPHA"], "epoch": "not-a-date"}`},
		{"negative quota", `{"rotation": ["ALPHA"], "epoch": "2026-01-01", "quotas": {"PTS": -1}}`},
		{"bad holiday date", `{"rotation": ["ALPHA"], "epoch": "2026-01-01", "holidays": [{"date": "21/04", "name": "x"}]}`},
		{"bad blocked date", `{"rotation": ["ALPHA"], "epoch": "2026-01-01", "blocked_dates": [{"date": "x", "reason": "y"}]}`},
		{"bad birthday", `{"rotation": ["ALPHA"], "epoch": "2026-01-01", "members": [{"id": "m-1", "name": "x", "team": "ALPHA", "birthday": "14-03-1990"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.ParseConfig([]byte(tc.json))
			assert.ErrorIs(t, err, credit.ErrConfiguration)
		})
	}
}

func TestParseMonthDay(t *testing.T) {
	md, err := factory.ParseMonthDay("03-14")
	require.NoError(t, err)
	assert.Equal(t, time.March, md.Month)
	assert.Equal(t, 14, md.Day)

	for _, bad := range []string{"", "3", "13-01", "00-10", "01-32", "ab-cd"} {
		_, err := factory.ParseMonthDay(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
