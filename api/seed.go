/*
seed.go - Demo squad loader

PURPOSE:
  Loads a small, realistic dataset for local development and demos: a
  four-team rotation, a handful of members, national holidays, one
  blocked date, and a starting balance for everyone.

IDEMPOTENCY:
  Members and reference data are upserts. Starting balances are only
  granted to members with a zero balance, so re-seeding never inflates
  the economy.

SEE ALSO:
  - factory/config.go: The configuration shapes reused here
  - handlers.go: LoadSeed endpoint
*/
package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/factory"
	"github.com/escala/roster-engine/store/sqlite"
)

// seedStartingBalance is granted to each demo member with an empty ledger.
var seedStartingBalance = decimal.NewFromInt(300)

// DefaultConfig is the demo squad configuration: a 4-team rotation
// starting 2026-01-01 and a handful of members spread across teams.
func DefaultConfig() factory.ConfigJSON {
	return factory.ConfigJSON{
		Rotation: []string{"DELTA", "ALPHA", "BRAVO", "CHARLIE"},
		Epoch:    "2026-01-01",
		Quotas:   map[string]int{"PTS": 1, "CPC": 1},
		Holidays: []factory.HolidayJSON{
			{Date: "2026-04-21", Name: "Tiradentes"},
			{Date: "2026-09-07", Name: "Independência"},
			{Date: "2026-12-25", Name: "Natal"},
		},
		BlockedDates: []factory.BlockedJSON{
			{Date: "2026-12-31", Reason: "year-end operation"},
		},
		Members: []factory.MemberJSON{
			{ID: "m-001", Name: "Sgt. Moreira", Team: "ALPHA", Matricula: "113377-1", Birthday: "03-14"},
			{ID: "m-002", Name: "Cb. Tavares", Team: "ALPHA", Matricula: "224488-2", Birthday: "01-02"},
			{ID: "m-003", Name: "Sd. Pinheiro", Team: "BRAVO", Matricula: "335599-3", Birthday: "07-22"},
			{ID: "m-004", Name: "Sd. Guimarães", Team: "CHARLIE", Matricula: "446600-4", Birthday: "11-05"},
			{ID: "m-005", Name: "Cb. Fontes", Team: "DELTA", Matricula: "557711-5", Birthday: "05-30"},
		},
	}
}

// ApplyConfig upserts the configuration's members and reference data
// into the store.
func ApplyConfig(ctx context.Context, store *sqlite.Store, cfg *factory.EngineConfig) error {
	for _, m := range cfg.Members {
		if err := store.InsertMember(ctx, m); err != nil {
			return err
		}
	}
	for _, h := range cfg.Holidays {
		if err := store.AddHoliday(ctx, h); err != nil {
			return err
		}
	}
	for _, b := range cfg.BlockedDates {
		if err := store.AddBlockedDate(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// SeedDemo loads the demo squad and grants starting balances.
func SeedDemo(ctx context.Context, store *sqlite.Store, coordinator *credit.Coordinator) error {
	cfg, err := DefaultConfig().Build()
	if err != nil {
		return err
	}
	if err := ApplyConfig(ctx, store, cfg); err != nil {
		return err
	}

	for _, m := range cfg.Members {
		balance, err := store.Balance(ctx, m.ID)
		if err != nil {
			return err
		}
		if !balance.IsZero() {
			continue
		}
		if _, err := coordinator.Grant(ctx, m.ID, seedStartingBalance, "demo starting balance"); err != nil {
			return err
		}
	}
	return nil
}
