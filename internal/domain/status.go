package domain

import "fmt"

// Status is the lead's position in the outreach lifecycle. The set is
// closed; anything else in the store is a bug.
type Status string

const (
	StatusHarvested       Status = "harvested"
	StatusQualified       Status = "qualified"
	StatusDisqualified    Status = "disqualified"
	StatusLowScore        Status = "low_score"
	StatusAssetGenerating Status = "asset_generating"
	StatusAssetGenerated  Status = "asset_generated"
	StatusDrafted         Status = "drafted"
	StatusReadyToSend     Status = "ready_to_send"
	StatusSent            Status = "sent"
	StatusFollowup1       Status = "followup_1"
	StatusFollowup2       Status = "followup_2"
	StatusFollowup3       Status = "followup_3"
	StatusFollowup4       Status = "followup_4"
	StatusReplied         Status = "replied"
	StatusConverted       Status = "converted"
	StatusUnsubscribed    Status = "unsubscribed"
	StatusDead            Status = "dead"
)

var allStatuses = map[Status]bool{
	StatusHarvested: true, StatusQualified: true, StatusDisqualified: true,
	StatusLowScore: true, StatusAssetGenerating: true, StatusAssetGenerated: true,
	StatusDrafted: true, StatusReadyToSend: true, StatusSent: true,
	StatusFollowup1: true, StatusFollowup2: true, StatusFollowup3: true,
	StatusFollowup4: true, StatusReplied: true, StatusConverted: true,
	StatusUnsubscribed: true, StatusDead: true,
}

var terminalStatuses = map[Status]bool{
	StatusDisqualified: true,
	StatusLowScore:     true,
	StatusReplied:      true,
	StatusConverted:    true,
	StatusUnsubscribed: true,
	StatusDead:         true,
}

func (s Status) Valid() bool    { return allStatuses[s] }
func (s Status) Terminal() bool { return terminalStatuses[s] }

// FollowupStatus returns the status for the k-th follow-up (1-indexed).
func FollowupStatus(k int) Status {
	return Status(fmt.Sprintf("followup_%d", k))
}
