package services

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"journal-review-api/models"
)

var maxRoundPattern = regexp.MustCompile(`SELECT COALESCE\(MAX\(round_number\), 0\) FROM .review_rounds.`)

func TestCreateRoundSequenceViolation(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: maxRoundPattern,
			args:    []driver.Value{int64(5)},
			columns: []string{"max_round"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)

	_, err := svc.createRoundTx(plainSession(db), 5, 3, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, _ := KindOf(err); kind != KindSequenceViolation {
		t.Fatalf("expected SequenceViolation, got %v (%v)", kind, err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRoundRejectsSecondOpenRound(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: maxRoundPattern,
			args:    []driver.Value{int64(5)},
			columns: []string{"max_round"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .review_rounds.`),
			args:    []driver.Value{int64(5), "in_progress"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)

	_, err := svc.createRoundTx(plainSession(db), 5, 2, nil)
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

func TestCreateRoundFirstRound(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: maxRoundPattern,
			args:    []driver.Value{int64(5)},
			columns: []string{"max_round"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .review_rounds.`),
			args:    []driver.Value{int64(5), "in_progress"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `review_rounds`"),
			args:    []driver.Value{int64(5), int64(1), "in_progress", anyArg, nil, nil},
			result:  scriptedResult{lastInsertID: 7, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)

	round, err := svc.createRoundTx(plainSession(db), 5, 1, nil)
	if err != nil {
		t.Fatalf("createRoundTx returned error: %v", err)
	}
	if round.RoundID != 7 {
		t.Fatalf("expected round id 7, got %d", round.RoundID)
	}
	if round.Status != models.RoundInProgress {
		t.Fatalf("expected in_progress, got %s", round.Status)
	}
	if round.StartDate.IsZero() {
		t.Fatal("expected start_date to be stamped")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCloseRoundIllegalTransitions(t *testing.T) {
	svc := NewRoundService(nil)

	cases := []struct {
		from models.RoundStatus
		to   models.RoundStatus
	}{
		{models.RoundCompleted, models.RoundInProgress},
		{models.RoundCompleted, models.RoundCancelled},
		{models.RoundCancelled, models.RoundCompleted},
		{models.RoundInProgress, models.RoundInProgress},
		{models.RoundInProgress, "reopened"},
	}
	for _, tc := range cases {
		round := &models.ReviewRound{RoundID: 7, Status: tc.from}
		err := svc.closeRoundTx(nil, round, tc.to, nil)
		if err == nil {
			t.Fatalf("expected error for %s -> %s", tc.from, tc.to)
		}
		if kind, _ := KindOf(err); kind != KindIllegalTransition {
			t.Fatalf("expected IllegalTransition for %s -> %s, got %v", tc.from, tc.to, kind)
		}
	}
}

func TestCloseRoundStampsEndDate(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `review_rounds`"),
			// Map-based updates are ordered by column name.
			args:   []driver.Value{anyArg, "completed", int64(7)},
			result: scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	round := &models.ReviewRound{RoundID: 7, Status: models.RoundInProgress}

	if err := svc.closeRoundTx(plainSession(db), round, models.RoundCompleted, nil); err != nil {
		t.Fatalf("closeRoundTx returned error: %v", err)
	}
	if round.Status != models.RoundCompleted {
		t.Fatalf("expected completed, got %s", round.Status)
	}
	if round.EndDate == nil {
		t.Fatal("expected end_date to be stamped")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
