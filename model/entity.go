package model

import (
	"time"

	"github.com/google/uuid"
)

// Label names a node kind of the meeting graph.
type Label string

const (
	LabelMeeting         Label = "Meeting"
	LabelDiscussionPoint Label = "DiscussionPoint"
	LabelPerson          Label = "Person"
	LabelTopic           Label = "Topic"
)

// Entity is a person or topic, unique by name within its label.
type Entity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      Label     `json:"entity_type"`
	CreatedAt time.Time `json:"created_at"`
}
