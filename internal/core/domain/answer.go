package domain

import "time"

// Answer is the result of a query.
type Answer struct {
	// Text is the generated answer.
	Text string

	// SupportingChunks are the chunks the answer was conditioned on, in retrieval order.
	SupportingChunks []Chunk

	// Scores holds the similarity of each supporting chunk.
	Scores []float64

	// Prompt is the exact prompt sent to the generator.
	Prompt string
}

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role
	Text    string
	Sources []Chunk
	At      time.Time
}

// Conversation is an append-only list of turns.
// It is display state only and never feeds back into retrieval.
type Conversation struct {
	Turns []Turn
}

// Append adds a turn stamped with the current time.
func (c *Conversation) Append(role Role, text string, sources []Chunk) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, Sources: sources, At: time.Now()})
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.Turns)
}
