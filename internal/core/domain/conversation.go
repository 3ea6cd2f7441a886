package domain

import "time"

// Turn is one query/answer exchange in a chat session.
type Turn struct {
	// Query is the user's question.
	Query string `json:"query"`

	// Answer is the generated, grounded answer.
	Answer string `json:"answer"`

	// Sources are the retrieved documents the answer was grounded on,
	// in ranking order with their scores.
	Sources []RetrievedDocument `json:"sources"`

	// Timestamp is when the turn completed.
	Timestamp time.Time `json:"timestamp"`

	// Latency is the end-to-end duration of the turn.
	Latency time.Duration `json:"latency_ns"`
}

// Conversation is an append-only log of turns scoped to a session.
// It is owned by the caller and passed by reference into the query
// handler; retrieval and synthesis themselves stay stateless per call.
type Conversation struct {
	// SessionID identifies the session.
	SessionID string `json:"session_id"`

	// Turns are the exchanges in order of occurrence.
	Turns []Turn `json:"turns"`

	// StartedAt is when the session was created.
	StartedAt time.Time `json:"started_at"`
}

// Append adds a turn to the end of the log.
func (c *Conversation) Append(t Turn) {
	c.Turns = append(c.Turns, t)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.Turns)
}
