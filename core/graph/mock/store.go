// Package mock provides an in-memory meeting graph for tests.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/model"
)

type link struct {
	entity       string
	label        model.Label
	pointID      uuid.UUID
	relationType model.RelationType
}

// Store is a graph.Store kept in memory. Fail hooks let tests inject errors.
type Store struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*model.Meeting
	points   []*model.DiscussionPoint
	persons  map[string]bool
	topics   map[string]bool
	links    []link

	// FailOn makes the named operation return an error, e.g. "CreateDiscussionPoint".
	FailOn map[string]error
}

var _ graph.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		meetings: map[uuid.UUID]*model.Meeting{},
		persons:  map[string]bool{},
		topics:   map[string]bool{},
		FailOn:   map[string]error{},
	}
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		return err
	}
	return nil
}

func (s *Store) CreateMeeting(ctx context.Context, title string, date *string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateMeeting"); err != nil {
		return uuid.Nil, err
	}

	meeting := &model.Meeting{ID: uuid.New(), Title: title, Date: date}
	s.meetings[meeting.ID] = meeting
	return meeting.ID, nil
}

func (s *Store) CreateDiscussionPoint(ctx context.Context, meetingID uuid.UUID, content string, timestamp *string, speaker *string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateDiscussionPoint"); err != nil {
		return uuid.Nil, err
	}
	if _, ok := s.meetings[meetingID]; !ok {
		return uuid.Nil, model.ErrMeetingNotFound
	}

	point := model.NewDiscussionPoint(meetingID, content, timestamp, speaker)
	point.ID = uuid.New()
	s.points = append(s.points, point)
	return point.ID, nil
}

func (s *Store) MergePerson(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MergePerson"); err != nil {
		return err
	}
	s.persons[name] = true
	return nil
}

func (s *Store) MergeTopic(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MergeTopic"); err != nil {
		return err
	}
	s.topics[name] = true
	return nil
}

func (s *Store) LinkPerson(ctx context.Context, personName string, pointID uuid.UUID, relationType model.RelationType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LinkPerson"); err != nil {
		return err
	}
	if !s.persons[personName] || s.point(pointID) == nil {
		return model.ErrEndpointNotFound
	}
	s.links = append(s.links, link{entity: personName, label: model.LabelPerson, pointID: pointID, relationType: relationType})
	return nil
}

func (s *Store) LinkTopic(ctx context.Context, topicName string, pointID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("LinkTopic"); err != nil {
		return err
	}
	if !s.topics[topicName] || s.point(pointID) == nil {
		return model.ErrEndpointNotFound
	}
	s.links = append(s.links, link{entity: topicName, label: model.LabelTopic, pointID: pointID, relationType: model.RelationDiscussedIn})
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = map[uuid.UUID]*model.Meeting{}
	s.points = nil
	s.persons = map[string]bool{}
	s.topics = map[string]bool{}
	s.links = nil
	return nil
}

func (s *Store) MeetingTimeline(ctx context.Context, meetingID uuid.UUID) ([]*model.TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := s.meetingPoints(meetingID)
	entries := make([]*model.TimelineEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, &model.TimelineEntry{Timestamp: p.Timestamp, Content: p.Content, Speaker: p.Speaker})
	}
	return entries, nil
}

func (s *Store) PersonActivities(ctx context.Context, personName string) ([]*model.PersonActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type activity struct {
		point    *model.DiscussionPoint
		meeting  *model.Meeting
		relation model.RelationType
	}
	var found []activity
	for _, l := range s.links {
		if l.label != model.LabelPerson || l.entity != personName {
			continue
		}
		p := s.point(l.pointID)
		found = append(found, activity{point: p, meeting: s.meetings[p.MeetingID], relation: l.relationType})
	}

	sort.SliceStable(found, func(i, j int) bool {
		di, dj := dateOf(found[i].meeting), dateOf(found[j].meeting)
		if di != dj {
			return di > dj
		}
		return graph.Before(found[i].point, found[j].point)
	})

	activities := make([]*model.PersonActivity, 0, len(found))
	for _, a := range found {
		activities = append(activities, &model.PersonActivity{
			Relationship: a.relation,
			MeetingTitle: a.meeting.Title,
			MeetingDate:  a.meeting.Date,
			Timestamp:    a.point.Timestamp,
			Content:      a.point.Content,
		})
	}
	return activities, nil
}

func (s *Store) SearchDiscussions(ctx context.Context, keywords []string) ([]*model.DiscussionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SearchDiscussions"); err != nil {
		return nil, err
	}

	keywords = graph.NormalizeKeywords(keywords)
	var matches []*model.DiscussionPoint
	for _, p := range s.points {
		content := strings.ToLower(p.Content)
		for _, keyword := range keywords {
			if strings.Contains(content, keyword) {
				matches = append(matches, p)
				break
			}
		}
	}
	graph.SortChronologically(matches)

	results := make([]*model.DiscussionContext, 0, len(matches))
	for _, p := range matches {
		result := &model.DiscussionContext{
			ID:           p.ID,
			Timestamp:    p.Timestamp,
			Content:      p.Content,
			MeetingTitle: s.meetings[p.MeetingID].Title,
			Topics:       s.linked(p.ID, model.LabelTopic),
			People:       s.linked(p.ID, model.LabelPerson),
			PriorContext: []string{},
		}
		for _, other := range s.meetingPoints(p.MeetingID) {
			if other.Offset != nil && p.Offset != nil && *other.Offset < *p.Offset {
				result.PriorContext = append(result.PriorContext, other.Content)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Store) ActionItems(ctx context.Context) ([]*model.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*model.ActionItem
	for _, p := range s.points {
		if p.Timestamp != nil && *p.Timestamp == model.ActionItemTimestamp {
			items = append(items, &model.ActionItem{MeetingTitle: s.meetings[p.MeetingID].Title, Content: p.Content})
		}
	}
	return items, nil
}

func (s *Store) CountNodes(ctx context.Context, label model.Label) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch label {
	case model.LabelMeeting:
		return len(s.meetings), nil
	case model.LabelDiscussionPoint:
		return len(s.points), nil
	case model.LabelPerson:
		return len(s.persons), nil
	case model.LabelTopic:
		return len(s.topics), nil
	default:
		return 0, fmt.Errorf("%w: %s", model.ErrInvalidLabel, label)
	}
}

func (s *Store) CountRelationships(ctx context.Context, relationType model.RelationType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if relationType == model.RelationHasPoint {
		return len(s.points), nil
	}
	count := 0
	for _, l := range s.links {
		if l.relationType == relationType {
			count++
		}
	}
	return count, nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) point(id uuid.UUID) *model.DiscussionPoint {
	for _, p := range s.points {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) meetingPoints(meetingID uuid.UUID) []*model.DiscussionPoint {
	var points []*model.DiscussionPoint
	for _, p := range s.points {
		if p.MeetingID == meetingID {
			points = append(points, p)
		}
	}
	graph.SortChronologically(points)
	return points
}

func (s *Store) linked(pointID uuid.UUID, label model.Label) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, l := range s.links {
		if l.pointID == pointID && l.label == label && !seen[l.entity] {
			seen[l.entity] = true
			names = append(names, l.entity)
		}
	}
	sort.Strings(names)
	return names
}

func dateOf(m *model.Meeting) string {
	if m == nil || m.Date == nil {
		return ""
	}
	return *m.Date
}
