package services

import (
	"testing"

	"journal-review-api/models"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		roleID int
		cap    Capability
		want   bool
	}{
		{models.RoleAuthor, CapCreateSubmission, true},
		{models.RoleAuthor, CapSubmitOwnSubmission, true},
		{models.RoleAuthor, CapSubmitReview, false},
		{models.RoleAuthor, CapViewConfidential, false},
		{models.RoleAuthor, CapManageRounds, false},
		{models.RoleReviewer, CapSubmitReview, true},
		{models.RoleReviewer, CapDeclineReview, true},
		{models.RoleReviewer, CapAssignReviewers, false},
		{models.RoleReviewer, CapViewConfidential, false},
		{models.RoleAdmin, CapStartReview, true},
		{models.RoleAdmin, CapManageRounds, true},
		{models.RoleAdmin, CapAssignReviewers, true},
		{models.RoleAdmin, CapEditReviews, true},
		{models.RoleAdmin, CapViewConfidential, true},
		{models.RoleAdmin, CapOverrideStatus, true},
		{models.RoleAdmin, CapPublish, true},
		{models.RoleAdmin, CapSweepOverdue, true},
		{models.RoleReviewer, CapSweepOverdue, false},
		{models.RoleAdmin, CapCreateSubmission, false},
		{0, CapCreateSubmission, false},
	}

	for _, tc := range cases {
		if got := RoleCan(tc.roleID, tc.cap); got != tc.want {
			t.Errorf("RoleCan(%d, %s) = %v, want %v", tc.roleID, tc.cap, got, tc.want)
		}
	}
}

func TestRequireCapReturnsForbidden(t *testing.T) {
	caller := Caller{UserID: 7, RoleID: models.RoleReviewer}
	err := requireCap(caller, CapManageRounds)
	if err == nil {
		t.Fatal("expected an error")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindForbidden {
		t.Fatalf("expected Forbidden kind, got %v (%v)", kind, err)
	}
}
