package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/siherrmann/meetgraph/model"
)

// TimestampParser splits a transcript line into its timestamp and content.
type TimestampParser func(line string) (timestamp string, content string, ok bool)

// PersonMatcher returns the people mentioned in a text.
type PersonMatcher func(text string) ([]string, error)

// TopicMatcher returns the topics a text is about.
type TopicMatcher func(text string) []string

// ExtractionPolicy is the rule set turning transcript lines into discussion
// points, people and topics.
type ExtractionPolicy struct {
	Name      string
	Timestamp TimestampParser
	People    PersonMatcher
	Topics    TopicMatcher

	// ActionItemPrefix marks untimed lines that become action items.
	// Empty disables action item handling.
	ActionItemPrefix    string
	ActionItemTimestamp string

	KeepUntimed            bool
	ExtractFromActionItems bool
	RelationType           model.RelationType
}

// ExtractedLine is one transcript line accepted by a policy.
type ExtractedLine struct {
	Content    string
	Timestamp  *string
	ActionItem bool
	People     []string
	Topics     []string
}

var trailingTimestamp = regexp.MustCompile(`(\d{1,2}:\d{2})\s*$`)
var capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

// SeedPolicy matches the curated seed transcript: leading clock timestamps,
// a fixed list of participants and a topic vocabulary.
func SeedPolicy() ExtractionPolicy {
	return ExtractionPolicy{
		Name:      "seed",
		Timestamp: LeadingTimestamp,
		People:    AllowListPersons("Dr. Sonia", "Rajat", "Sandesh", "Chandana"),
		Topics: KeywordTopics(map[string][]string{
			"Neo4j integration":     {"neo4j", "graph database"},
			"Project Charter":       {"project charter", "charter"},
			"Integration Framework": {"integration framework", "framework", "phase"},
			"System Design":         {"system design", "design", "flowchart"},
			"MongoDB":               {"mongodb"},
			"Graph Retrieval Agent": {"graph retrieval", "agent"},
		}),
		ActionItemPrefix:    "-",
		ActionItemTimestamp: model.ActionItemTimestamp,
		KeepUntimed:         false,
		RelationType:        model.RelationMentionedIn,
	}
}

// GeneralPolicy handles free-form notes with trailing timestamps. Every
// capitalized word counts as a person.
func GeneralPolicy() ExtractionPolicy {
	return ExtractionPolicy{
		Name:      "general",
		Timestamp: TrailingTimestamp,
		People:    CapitalizedPersons(),
		Topics: TermTopics(
			"Neo4j", "API", "database", "interface", "testing",
			"development", "integration", "design", "implementation", "project",
		),
		ActionItemTimestamp: model.ActionItemTimestamp,
		KeepUntimed:         true,
		RelationType:        model.RelationMentionedIn,
	}
}

// PolicyByName returns the preset with the given name.
func PolicyByName(name string) (ExtractionPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "seed":
		return SeedPolicy(), true
	case "general", "":
		return GeneralPolicy(), true
	default:
		return ExtractionPolicy{}, false
	}
}

// LeadingTimestamp accepts lines whose first field is a clock value,
// e.g. "6:16 Rajat was introduced".
func LeadingTimestamp(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	first, rest, found := strings.Cut(line, " ")
	if !found {
		return "", "", false
	}
	if _, ok := model.ParseClock(first); !ok {
		return "", "", false
	}
	return first, strings.TrimSpace(rest), true
}

// TrailingTimestamp accepts lines ending in an H:MM clock value,
// e.g. "Kickoff with the team 10:05".
func TrailingTimestamp(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	match := trailingTimestamp.FindStringSubmatchIndex(line)
	if match == nil {
		return "", "", false
	}
	return line[match[2]:match[3]], strings.TrimSpace(line[:match[2]]), true
}

// FirstTimestamp tries the parsers in order.
func FirstTimestamp(parsers ...TimestampParser) TimestampParser {
	return func(line string) (string, string, bool) {
		for _, parser := range parsers {
			if timestamp, content, ok := parser(line); ok {
				return timestamp, content, true
			}
		}
		return "", "", false
	}
}

// AllowListPersons matches the given names by case-sensitive containment,
// in list order.
func AllowListPersons(names ...string) PersonMatcher {
	return func(text string) ([]string, error) {
		people := []string{}
		for _, name := range names {
			if strings.Contains(text, name) {
				people = appendUnique(people, name)
			}
		}
		return people, nil
	}
}

// CapitalizedPersons treats every capitalized word as a person.
func CapitalizedPersons() PersonMatcher {
	return func(text string) ([]string, error) {
		people := []string{}
		for _, word := range capitalizedWord.FindAllString(text, -1) {
			people = appendUnique(people, word)
		}
		return people, nil
	}
}

// KeywordTopics matches a topic when the text contains any of its keywords,
// ignoring case. Topics are returned sorted by label.
func KeywordTopics(vocabulary map[string][]string) TopicMatcher {
	labels := make([]string, 0, len(vocabulary))
	for label := range vocabulary {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return func(text string) []string {
		lower := strings.ToLower(text)
		topics := []string{}
		for _, label := range labels {
			for _, keyword := range vocabulary[label] {
				if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
					topics = append(topics, label)
					break
				}
			}
		}
		return topics
	}
}

// TermTopics matches whole-word terms ignoring case. The topic is the
// lower-cased term.
func TermTopics(terms ...string) TopicMatcher {
	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	}

	return func(text string) []string {
		topics := []string{}
		for i, pattern := range patterns {
			if pattern.MatchString(text) {
				topics = appendUnique(topics, strings.ToLower(terms[i]))
			}
		}
		return topics
	}
}

// ExtractLine applies the policy to a single line. Lines the policy rejects
// return ok false.
func (p ExtractionPolicy) ExtractLine(line string) (*ExtractedLine, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, nil
	}

	extracted := &ExtractedLine{}
	timestamp, content, timed := "", "", false
	if p.Timestamp != nil {
		timestamp, content, timed = p.Timestamp(line)
	}

	switch {
	case timed:
		extracted.Content = content
		extracted.Timestamp = &timestamp
	case p.ActionItemPrefix != "" && strings.HasPrefix(line, p.ActionItemPrefix):
		sentinel := p.ActionItemTimestamp
		if sentinel == "" {
			sentinel = model.ActionItemTimestamp
		}
		extracted.Content = line
		extracted.Timestamp = &sentinel
		extracted.ActionItem = true
	case p.KeepUntimed:
		extracted.Content = line
	default:
		return nil, false, nil
	}

	if extracted.ActionItem && !p.ExtractFromActionItems {
		return extracted, true, nil
	}

	if p.People != nil {
		people, err := p.People(extracted.Content)
		if err != nil {
			return nil, false, err
		}
		extracted.People = people
	}
	if p.Topics != nil {
		extracted.Topics = p.Topics(extracted.Content)
	}

	return extracted, true, nil
}

// Extract applies the policy to every line of a transcript in order.
func (p ExtractionPolicy) Extract(text string) ([]*ExtractedLine, error) {
	lines := []*ExtractedLine{}
	for _, line := range strings.Split(text, "\n") {
		extracted, ok, err := p.ExtractLine(line)
		if err != nil {
			return nil, err
		}
		if ok {
			lines = append(lines, extracted)
		}
	}
	return lines, nil
}
