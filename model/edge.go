package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RelationType is the type of a graph relationship.
type RelationType string

const (
	RelationHasPoint    RelationType = "HAS_POINT"
	RelationMentionedIn RelationType = "MENTIONED_IN"
	RelationDiscussedIn RelationType = "DISCUSSED_IN"
)

var relationTypePattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// NormalizeRelationType upper-cases a caller supplied relationship type,
// defaults to MENTIONED_IN and rejects anything that is not an identifier.
func NormalizeRelationType(relationType string) (RelationType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(relationType))
	if normalized == "" {
		return RelationMentionedIn, nil
	}
	if !relationTypePattern.MatchString(normalized) {
		return "", ErrInvalidRelationType
	}
	return RelationType(normalized), nil
}

// Edge links a person or topic to a discussion point.
type Edge struct {
	ID                uuid.UUID    `json:"id"`
	EntityID          uuid.UUID    `json:"entity_id"`
	DiscussionPointID uuid.UUID    `json:"discussion_point_id"`
	RelationType      RelationType `json:"relation_type"`
	CreatedAt         time.Time    `json:"created_at"`
}
