package model

import "github.com/google/uuid"

// TimelineEntry is one discussion point of a meeting timeline.
type TimelineEntry struct {
	Timestamp *string `json:"timestamp,omitempty"`
	Content   string  `json:"content"`
	Speaker   *string `json:"speaker,omitempty"`
}

// PersonActivity is one discussion point a person is linked to.
type PersonActivity struct {
	Relationship RelationType `json:"relationship"`
	MeetingTitle string       `json:"meeting"`
	MeetingDate  *string      `json:"date,omitempty"`
	Timestamp    *string      `json:"timestamp,omitempty"`
	Content      string       `json:"content"`
}

// DiscussionContext is a keyword hit with its surrounding graph context.
type DiscussionContext struct {
	ID           uuid.UUID `json:"id"`
	Timestamp    *string   `json:"timestamp,omitempty"`
	Content      string    `json:"content"`
	MeetingTitle string    `json:"meeting_title"`
	Topics       []string  `json:"topics"`
	People       []string  `json:"people"`
	PriorContext []string  `json:"prior_context"`
}

// ActionItem is a discussion point stored with the action item timestamp.
type ActionItem struct {
	MeetingTitle string `json:"meeting_title"`
	Content      string `json:"content"`
}

// VectorResult is the source summary of a vector match in a query result.
type VectorResult struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	File    string  `json:"file"`
}

// GraphResult is the source summary of a graph hit in a query result.
type GraphResult struct {
	MeetingTitle string   `json:"meeting_title"`
	Content      string   `json:"content"`
	Topics       []string `json:"topics"`
	People       []string `json:"people"`
}

// QueryResult is the answer of a question. When Error is set the
// Response carries a readable error message and no sources are attached.
type QueryResult struct {
	Response      string          `json:"response"`
	Error         string          `json:"error,omitempty"`
	VectorResults []*VectorResult `json:"vector_results,omitempty"`
	GraphResults  []*GraphResult  `json:"graph_results,omitempty"`
}
