package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"journal-review-api/models"
)

func TestSweepOverdueRequiresCapability(t *testing.T) {
	svc := NewWorkflowService(nil)

	_, err := svc.SweepOverdue(Caller{UserID: 7, RoleID: models.RoleReviewer}, time.Now())
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, _ := KindOf(err); kind != KindForbidden {
		t.Fatalf("expected Forbidden, got %v (%v)", kind, err)
	}
}

func TestSweepOverdueMarksPendingPastDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `reviews`"),
			// Map-based updates are ordered by column name, then the filter
			// binds: pending status, due date cutoff, open-round subquery.
			args:   []driver.Value{"overdue", now, "pending", now, "in_progress"},
			result: scriptedResult{rowsAffected: 3},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewWorkflowService(db)

	count, err := svc.SweepOverdue(systemCaller, now)
	if err != nil {
		t.Fatalf("SweepOverdue returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 marked reviews, got %d", count)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
