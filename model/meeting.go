package model

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is the root node of one ingested transcript.
type Meeting struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Date      *string   `json:"date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DiscussionPoint is a single remark of a meeting, linked from the meeting by HAS_POINT.
type DiscussionPoint struct {
	ID        uuid.UUID `json:"id"`
	MeetingID uuid.UUID `json:"meeting_id"`
	Content   string    `json:"content"`
	Timestamp *string   `json:"timestamp,omitempty"`
	Offset    *int      `json:"offset,omitempty"` // seconds since meeting start
	Speaker   *string   `json:"speaker,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDiscussionPoint derives the clock offset from the timestamp.
func NewDiscussionPoint(meetingID uuid.UUID, content string, timestamp *string, speaker *string) *DiscussionPoint {
	return &DiscussionPoint{
		MeetingID: meetingID,
		Content:   content,
		Timestamp: timestamp,
		Offset:    ClockOffset(timestamp),
		Speaker:   speaker,
	}
}
