package retrieval

import (
	"fmt"
	"strings"

	"github.com/siherrmann/meetgraph/model"
)

const (
	// KeywordPrompt asks the chat model for comma separated search terms.
	KeywordPrompt = "Extract key terms from the query that would be useful for searching in a graph database. Return them as a comma-separated list."

	// AnalystPrompt is the system prompt of the answer synthesis.
	AnalystPrompt = `You are an AI assistant helping to analyze meeting notes and discussions.
Use the provided context from both the vector store (semantic search) and graph database
to answer the question comprehensively. If there are any conflicts between sources,
point them out. If information is missing or unclear, acknowledge that.`

	// ErrorResponse prefixes the readable message of a failed query.
	ErrorResponse = "An error occurred while processing your query: "
)

// ParseKeywords splits a comma separated model answer into lower-cased terms.
func ParseKeywords(answer string) []string {
	keywords := []string{}
	for _, term := range strings.Split(answer, ",") {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			keywords = append(keywords, term)
		}
	}
	return keywords
}

// VectorContext lists the content of every match.
func VectorContext(matches []model.VectorMatch) string {
	var b strings.Builder
	b.WriteString("\nRelevant meeting notes:\n")
	for _, match := range matches {
		fmt.Fprintf(&b, "- %s\n", match.Metadata.Content)
	}
	return b.String()
}

// GraphContext lists meeting, content, topics and people of every hit.
// Empty topic and people lists are left out.
func GraphContext(discussions []*model.DiscussionContext) string {
	var b strings.Builder
	b.WriteString("\nRelevant discussion points:\n")
	for _, d := range discussions {
		fmt.Fprintf(&b, "Meeting: %s\n", d.MeetingTitle)
		fmt.Fprintf(&b, "Content: %s\n", d.Content)
		if len(d.Topics) > 0 {
			fmt.Fprintf(&b, "Topics: %s\n", strings.Join(d.Topics, ", "))
		}
		if len(d.People) > 0 {
			fmt.Fprintf(&b, "People involved: %s\n", strings.Join(d.People, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// UserPrompt combines both contexts with the question.
func UserPrompt(question string, matches []model.VectorMatch, discussions []*model.DiscussionContext) string {
	return fmt.Sprintf(
		"Context from vector search:%s\n\nContext from graph database:%s\n\nQuestion: %s",
		VectorContext(matches),
		GraphContext(discussions),
		question,
	)
}

// FormatActionItems groups action items by meeting title in first-seen order.
func FormatActionItems(items []*model.ActionItem) string {
	if len(items) == 0 {
		return "No action items found."
	}

	var order []string
	grouped := map[string][]string{}
	for _, item := range items {
		if _, ok := grouped[item.MeetingTitle]; !ok {
			order = append(order, item.MeetingTitle)
		}
		grouped[item.MeetingTitle] = append(grouped[item.MeetingTitle], item.Content)
	}

	var b strings.Builder
	for i, title := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Meeting: %s\n", title)
		for _, content := range grouped[title] {
			content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "-"))
			fmt.Fprintf(&b, "- %s\n", content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
