package models

import "testing"

func TestRoundTransitions(t *testing.T) {
	cases := []struct {
		from, to RoundStatus
		allowed  bool
	}{
		{RoundInProgress, RoundCompleted, true},
		{RoundInProgress, RoundCancelled, true},
		{RoundCompleted, RoundInProgress, false},
		{RoundCompleted, RoundCancelled, false},
		{RoundCancelled, RoundInProgress, false},
		{RoundCancelled, RoundCompleted, false},
		{RoundInProgress, RoundInProgress, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestValidRoundStatusRejectsUnknown(t *testing.T) {
	if ValidRoundStatus("reopened") {
		t.Error("expected unknown round status to be invalid")
	}
	if !ValidRoundStatus(RoundCompleted) {
		t.Error("expected completed to be valid")
	}
}

func TestReviewStatusSubmittable(t *testing.T) {
	if !ReviewPending.Submittable() {
		t.Error("pending review must be submittable")
	}
	if !ReviewOverdue.Submittable() {
		t.Error("overdue review must still be submittable")
	}
	if ReviewCompleted.Submittable() {
		t.Error("completed review must not be submittable")
	}
	if ReviewDeclined.Submittable() {
		t.Error("declined review must not be submittable")
	}
}

func TestDeriveDecision(t *testing.T) {
	cases := []struct {
		name string
		recs []Recommendation
		want SubmissionStatus
		ok   bool
	}{
		{
			name: "no reviews leaves status undecided",
			recs: nil,
			ok:   false,
		},
		{
			name: "single accept",
			recs: []Recommendation{RecommendAccept},
			want: SubmissionAccepted,
			ok:   true,
		},
		{
			name: "all accept",
			recs: []Recommendation{RecommendAccept, RecommendAccept, RecommendAccept},
			want: SubmissionAccepted,
			ok:   true,
		},
		{
			name: "reject dominates accept",
			recs: []Recommendation{RecommendAccept, RecommendReject},
			want: SubmissionRejected,
			ok:   true,
		},
		{
			name: "reject dominates revisions",
			recs: []Recommendation{RecommendMajorRevisions, RecommendReject, RecommendMinorRevisions},
			want: SubmissionRejected,
			ok:   true,
		},
		{
			name: "major revisions dominates accept",
			recs: []Recommendation{RecommendAccept, RecommendMajorRevisions},
			want: SubmissionRevisionsRequired,
			ok:   true,
		},
		{
			name: "minor revisions alone",
			recs: []Recommendation{RecommendMinorRevisions},
			want: SubmissionRevisionsRequired,
			ok:   true,
		},
		{
			name: "mixed revisions",
			recs: []Recommendation{RecommendMinorRevisions, RecommendMajorRevisions, RecommendAccept},
			want: SubmissionRevisionsRequired,
			ok:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DeriveDecision(tc.recs)
			if ok != tc.ok {
				t.Fatalf("DeriveDecision ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("DeriveDecision = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDeriveDecisionIsDeterministic(t *testing.T) {
	recs := []Recommendation{RecommendAccept, RecommendReject, RecommendMinorRevisions}
	first, _ := DeriveDecision(recs)
	for i := 0; i < 10; i++ {
		got, _ := DeriveDecision(recs)
		if got != first {
			t.Fatalf("derivation not deterministic: got %s then %s", first, got)
		}
	}
}
