/*
auditor.go - Nightly ledger consistency audit

PURPOSE:
  Periodically verifies the economy's books:
  1. Every balance equals the replayed sum of its journal entries
  2. No balance is negative
  3. Outstanding request debits (debits minus refunds) equal the total
     charged cost of the member's active requests

DESIGN:
  - Scheduled with robfig/cron (default: 03:00 every night)
  - RunOnce is safe to call concurrently with live traffic: it only
    reads, and a request landing mid-audit can at worst produce a
    false-positive issue for that one run
  - Issues are logged and reported, never auto-repaired

USAGE:
  auditor := NewAuditor(store, store, log)
  auditor.Start()
  // ... later
  auditor.Stop()

SEE ALSO:
  - credit/ledger.go: The invariants being checked
  - handlers.go: RunAudit endpoint (manual trigger)
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/escala/roster-engine/credit"
	"github.com/escala/roster-engine/personnel"
)

// DefaultAuditSchedule runs the audit at 03:00 every night.
const DefaultAuditSchedule = "0 3 * * *"

// AuditReport summarizes one audit run.
type AuditReport struct {
	RanAt          time.Time
	MembersChecked int
	Issues         []string
}

func toAuditReportDTO(report *AuditReport) AuditReportDTO {
	issues := report.Issues
	if issues == nil {
		issues = []string{}
	}
	return AuditReportDTO{
		RanAt:          report.RanAt.Format(time.RFC3339),
		MembersChecked: report.MembersChecked,
		Issues:         issues,
	}
}

// Auditor runs the scheduled ledger audit.
type Auditor struct {
	Store     credit.Store
	Directory personnel.Directory
	Schedule  string
	Log       *logrus.Logger

	cron *cron.Cron
}

// NewAuditor creates an auditor with the default nightly schedule.
func NewAuditor(store credit.Store, directory personnel.Directory, log *logrus.Logger) *Auditor {
	if log == nil {
		log = logrus.New()
	}
	return &Auditor{
		Store:     store,
		Directory: directory,
		Schedule:  DefaultAuditSchedule,
		Log:       log,
	}
}

// Start schedules the nightly run.
func (a *Auditor) Start() error {
	c := cron.New()
	_, err := c.AddFunc(a.Schedule, func() {
		report, err := a.RunOnce(context.Background())
		if err != nil {
			a.Log.WithError(err).Error("ledger audit failed")
			return
		}
		entry := a.Log.WithFields(logrus.Fields{
			"members": report.MembersChecked,
			"issues":  len(report.Issues),
		})
		if len(report.Issues) > 0 {
			entry.Warn("ledger audit found issues")
			for _, issue := range report.Issues {
				a.Log.Warn(issue)
			}
			return
		}
		entry.Info("ledger audit clean")
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", a.Schedule, err)
	}
	c.Start()
	a.cron = c
	a.Log.WithField("schedule", a.Schedule).Info("ledger auditor started")
	return nil
}

// Stop halts the schedule. Blocks until a run in progress completes.
func (a *Auditor) Stop() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
		a.Log.Info("ledger auditor stopped")
	}
}

// RunOnce audits every member's books and returns the report.
func (a *Auditor) RunOnce(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{RanAt: time.Now().UTC()}

	members, err := a.Directory.Members(ctx)
	if err != nil {
		return nil, err
	}

	active, err := a.Store.ActiveRequests(ctx)
	if err != nil {
		return nil, err
	}
	activeCost := make(map[personnel.MemberID]decimal.Decimal, len(members))
	for _, req := range active {
		activeCost[req.MemberID] = activeCost[req.MemberID].Add(req.CostCharged)
	}

	for _, m := range members {
		issues, err := a.auditMember(ctx, m.ID, activeCost[m.ID])
		if err != nil {
			return nil, err
		}
		report.Issues = append(report.Issues, issues...)
		report.MembersChecked++
	}
	return report, nil
}

func (a *Auditor) auditMember(ctx context.Context, id personnel.MemberID, activeCost decimal.Decimal) ([]string, error) {
	balance, err := a.Store.Balance(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := a.Store.EntriesByMember(ctx, id)
	if err != nil {
		return nil, err
	}

	var issues []string

	if balance.IsNegative() {
		issues = append(issues, fmt.Sprintf("%s: negative balance %s", id, balance))
	}

	// Replay the journal; the sum of deltas must reproduce the balance.
	replayed := decimal.Zero
	outstanding := decimal.Zero
	for _, e := range entries {
		replayed = replayed.Add(e.Delta())
		if e.RequestID == "" {
			continue
		}
		switch e.Kind {
		case credit.EntryDebit:
			outstanding = outstanding.Add(e.Amount)
		case credit.EntryCredit:
			outstanding = outstanding.Sub(e.Amount)
		}
	}
	if !replayed.Equal(balance) {
		issues = append(issues, fmt.Sprintf("%s: balance %s does not match journal replay %s",
			id, balance, replayed))
	}

	// Outstanding debits must equal the charged cost of active requests.
	if !outstanding.Equal(activeCost) {
		issues = append(issues, fmt.Sprintf("%s: outstanding debits %s do not match active request cost %s",
			id, outstanding, activeCost))
	}

	return issues, nil
}
