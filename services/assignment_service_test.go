package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"journal-review-api/models"
)

func TestAssignReviewerRejectsClosedRound(t *testing.T) {
	svc := &AssignmentService{dueDays: defaultReviewDueDays}
	round := &models.ReviewRound{RoundID: 4, Status: models.RoundCancelled}

	_, _, err := svc.assignTx(nil, round, 9, nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, _ := KindOf(err); kind != KindInvalidState {
		t.Fatalf("expected InvalidState, got %v (%v)", kind, err)
	}
}

func TestAssignReviewerIsIdempotent(t *testing.T) {
	assigned := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users`"),
			args:    []driver.Value{int64(9), int64(1)},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(9), "reviewer@example.org", int64(models.RoleReviewer)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviewer_assignments`"),
			args:    []driver.Value{int64(4), int64(9), int64(1)},
			columns: []string{"assignment_id", "round_id", "reviewer_id", "editor_comment", "assigned_at"},
			rows:    [][]driver.Value{{int64(21), int64(4), int64(9), nil, assigned}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := &AssignmentService{db: db, dueDays: defaultReviewDueDays}
	round := &models.ReviewRound{RoundID: 4, Status: models.RoundInProgress}

	assignment, created, err := svc.assignTx(plainSession(db), round, 9, nil, nil)
	if err != nil {
		t.Fatalf("assignTx returned error: %v", err)
	}
	if created {
		t.Fatal("expected the existing assignment, not a new one")
	}
	if assignment.AssignmentID != 21 {
		t.Fatalf("expected stored assignment 21, got %d", assignment.AssignmentID)
	}

	// No INSERT step was scripted: repeating the call must not write.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignReviewerRejectsNonReviewer(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users`"),
			args:    []driver.Value{int64(9), int64(1)},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(9), "author@example.org", int64(models.RoleAuthor)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := &AssignmentService{db: db, dueDays: defaultReviewDueDays}
	round := &models.ReviewRound{RoundID: 4, Status: models.RoundInProgress}

	_, _, err := svc.assignTx(plainSession(db), round, 9, nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, _ := KindOf(err); kind != KindInvalidState {
		t.Fatalf("expected InvalidState, got %v (%v)", kind, err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnassignReviewerBlockedAfterSubmission(t *testing.T) {
	assigned := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviewer_assignments`"),
			args:    []driver.Value{int64(4), int64(9), int64(1)},
			columns: []string{"assignment_id", "round_id", "reviewer_id", "editor_comment", "assigned_at"},
			rows:    [][]driver.Value{{int64(21), int64(4), int64(9), nil, assigned}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews`"),
			args:    []driver.Value{int64(4), int64(9), int64(1)},
			columns: []string{"review_id", "round_id", "reviewer_id", "status"},
			rows:    [][]driver.Value{{int64(11), int64(4), int64(9), "completed"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := &AssignmentService{db: db, dueDays: defaultReviewDueDays}

	err := svc.unassignTx(plainSession(db), 4, 9)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, _ := KindOf(err); kind != KindReviewAlreadySubmitted {
		t.Fatalf("expected ReviewAlreadySubmitted, got %v (%v)", kind, err)
	}

	// No DELETE step was scripted: the assignment must survive.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnassignReviewerRemovesPendingReview(t *testing.T) {
	assigned := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviewer_assignments`"),
			args:    []driver.Value{int64(4), int64(9), int64(1)},
			columns: []string{"assignment_id", "round_id", "reviewer_id", "editor_comment", "assigned_at"},
			rows:    [][]driver.Value{{int64(21), int64(4), int64(9), nil, assigned}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `reviews`"),
			args:    []driver.Value{int64(4), int64(9), int64(1)},
			columns: []string{"review_id", "round_id", "reviewer_id", "status"},
			rows:    [][]driver.Value{{int64(11), int64(4), int64(9), "pending"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `reviews`"),
			args:    []driver.Value{int64(11)},
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `reviewer_assignments`"),
			args:    []driver.Value{int64(21)},
			result:  scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := &AssignmentService{db: db, dueDays: defaultReviewDueDays}

	if err := svc.unassignTx(plainSession(db), 4, 9); err != nil {
		t.Fatalf("unassignTx returned error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
