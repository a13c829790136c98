// Package transcript models the conversation log: an ordered, append-only
// sequence of turns. The orchestrator appends the user's turn before the
// network call and exactly one assistant turn after it settles, so a
// conversation never loses a question even when the backend fails.
package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Role says who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// Log is the ordered conversation. Past turns are never mutated.
type Log struct {
	turns []Turn
}

// AppendUser adds the user's message and returns the stored turn.
func (l *Log) AppendUser(content string) Turn {
	return l.append(RoleUser, content)
}

// AppendAssistant adds an assistant reply and returns the stored turn.
func (l *Log) AppendAssistant(content string) Turn {
	return l.append(RoleAssistant, content)
}

func (l *Log) append(role Role, content string) Turn {
	turn := Turn{Role: role, Content: content, SentAt: time.Now()}
	l.turns = append(l.turns, turn)
	return turn
}

// Turns returns a copy of the log in insertion order.
func (l *Log) Turns() []Turn {
	turns := make([]Turn, len(l.turns))
	copy(turns, l.turns)
	return turns
}

// Len reports the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Last returns the most recent turn, if any.
func (l *Log) Last() (Turn, bool) {
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}

// Save exports turns to path as indented JSON, creating directories as
// needed.
func Save(path string, turns []Turn) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a previously exported transcript.
func Load(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
