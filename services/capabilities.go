package services

import "journal-review-api/models"

// Caller is the identity assertion resolved by the auth middleware, plus the
// request metadata the audit trail records.
type Caller struct {
	UserID    int
	RoleID    int
	IPAddress string
	UserAgent string
}

// Capability is one grant in the per-role capability set. Authorization is
// evaluated once per operation inside the workflow service instead of ad hoc
// role checks scattered through handlers.
type Capability string

const (
	CapCreateSubmission    Capability = "create_submission"
	CapSubmitOwnSubmission Capability = "submit_own_submission"
	CapSubmitReview        Capability = "submit_review"
	CapDeclineReview       Capability = "decline_review"
	CapStartReview         Capability = "start_review"
	CapManageRounds        Capability = "manage_rounds"
	CapAssignReviewers     Capability = "assign_reviewers"
	CapEditReviews         Capability = "edit_reviews"
	CapViewConfidential    Capability = "view_confidential"
	CapOverrideStatus      Capability = "override_status"
	CapPublish             Capability = "publish"
	CapViewAllSubmissions  Capability = "view_all_submissions"
	CapSweepOverdue        Capability = "sweep_overdue"
)

var roleCapabilities = map[int]map[Capability]bool{
	models.RoleAuthor: {
		CapCreateSubmission:    true,
		CapSubmitOwnSubmission: true,
	},
	models.RoleReviewer: {
		CapSubmitReview:  true,
		CapDeclineReview: true,
	},
	models.RoleAdmin: {
		CapStartReview:        true,
		CapManageRounds:       true,
		CapAssignReviewers:    true,
		CapEditReviews:        true,
		CapViewConfidential:   true,
		CapOverrideStatus:     true,
		CapPublish:            true,
		CapViewAllSubmissions: true,
		CapSweepOverdue:       true,
	},
}

// RoleCan reports whether the given role holds a capability.
func RoleCan(roleID int, cap Capability) bool {
	return roleCapabilities[roleID][cap]
}

// Can reports whether the caller holds a capability.
func (c Caller) Can(cap Capability) bool {
	return RoleCan(c.RoleID, cap)
}

func requireCap(caller Caller, cap Capability) error {
	if !caller.Can(cap) {
		return Errf(KindForbidden, "caller role does not permit %s", cap)
	}
	return nil
}
