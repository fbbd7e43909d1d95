package models

// Workflow statuses are closed enumerations. Anything arriving from a client
// must pass the Valid* checks before it touches the database; transitions are
// only legal when the corresponding table says so.

// SubmissionStatus is the editorial state of a submission. Except for the
// initial submit and the terminal publish, it is derived from round/review
// state and never set directly by a client.
type SubmissionStatus string

const (
	SubmissionDraft             SubmissionStatus = "draft"
	SubmissionSubmitted         SubmissionStatus = "submitted"
	SubmissionUnderReview       SubmissionStatus = "under_review"
	SubmissionRevisionsRequired SubmissionStatus = "revisions_required"
	SubmissionAccepted          SubmissionStatus = "accepted"
	SubmissionRejected          SubmissionStatus = "rejected"
	SubmissionPublished         SubmissionStatus = "published"
)

var submissionStatuses = map[SubmissionStatus]bool{
	SubmissionDraft:             true,
	SubmissionSubmitted:         true,
	SubmissionUnderReview:       true,
	SubmissionRevisionsRequired: true,
	SubmissionAccepted:          true,
	SubmissionRejected:          true,
	SubmissionPublished:         true,
}

// ValidSubmissionStatus reports whether s is a known submission status.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	return submissionStatuses[s]
}

// RoundStatus is the state of one review round.
type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
	RoundCancelled  RoundStatus = "cancelled"
)

// roundTransitions is the full transition table for rounds. Completed and
// cancelled are terminal: a closed round never reopens, revision cycles
// create a new round instead.
var roundTransitions = map[RoundStatus][]RoundStatus{
	RoundInProgress: {RoundCompleted, RoundCancelled},
	RoundCompleted:  {},
	RoundCancelled:  {},
}

// ValidRoundStatus reports whether s is a known round status.
func ValidRoundStatus(s RoundStatus) bool {
	_, ok := roundTransitions[s]
	return ok
}

// CanTransition reports whether a round may move from its current status to next.
func (s RoundStatus) CanTransition(next RoundStatus) bool {
	for _, allowed := range roundTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReviewStatus is the state of one reviewer's review within a round.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewCompleted ReviewStatus = "completed"
	ReviewDeclined  ReviewStatus = "declined"
	ReviewOverdue   ReviewStatus = "overdue"
)

var reviewStatuses = map[ReviewStatus]bool{
	ReviewPending:   true,
	ReviewCompleted: true,
	ReviewDeclined:  true,
	ReviewOverdue:   true,
}

// ValidReviewStatus reports whether s is a known review status.
func ValidReviewStatus(s ReviewStatus) bool {
	return reviewStatuses[s]
}

// Submittable reports whether a review in this status can still accept the
// reviewer's recommendation. Overdue reviews may still be submitted; a late
// review is better than none.
func (s ReviewStatus) Submittable() bool {
	return s == ReviewPending || s == ReviewOverdue
}

// Recommendation is a reviewer's verdict on a submission.
type Recommendation string

const (
	RecommendAccept         Recommendation = "accept"
	RecommendMinorRevisions Recommendation = "minor_revisions"
	RecommendMajorRevisions Recommendation = "major_revisions"
	RecommendReject         Recommendation = "reject"
)

// recommendationSeverity orders recommendations for decision derivation. The
// most severe recommendation in a round wins: a single reject overrides any
// number of accepts.
var recommendationSeverity = map[Recommendation]int{
	RecommendAccept:         0,
	RecommendMinorRevisions: 1,
	RecommendMajorRevisions: 2,
	RecommendReject:         3,
}

// ValidRecommendation reports whether r is a known recommendation.
func ValidRecommendation(r Recommendation) bool {
	_, ok := recommendationSeverity[r]
	return ok
}

// DeriveDecision maps the completed recommendations of a closed round to the
// resulting submission status. The second result is false when there are no
// recommendations to derive from, in which case the caller must leave the
// submission status untouched.
func DeriveDecision(recs []Recommendation) (SubmissionStatus, bool) {
	if len(recs) == 0 {
		return "", false
	}
	worst := RecommendAccept
	for _, r := range recs {
		if recommendationSeverity[r] > recommendationSeverity[worst] {
			worst = r
		}
	}
	switch worst {
	case RecommendReject:
		return SubmissionRejected, true
	case RecommendMajorRevisions, RecommendMinorRevisions:
		return SubmissionRevisionsRequired, true
	default:
		return SubmissionAccepted, true
	}
}
