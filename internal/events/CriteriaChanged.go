package events

var CriteriaChangedTopic = "CriteriaChangedEvent"

// CriteriaChanged is published after criteria definitions were created or edited.
type CriteriaChanged struct {
	CriteriaIDs []int64
}
