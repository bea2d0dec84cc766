package session

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the capitalized role name used in prompt transcripts.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		if r == "" {
			return ""
		}
		return strings.ToUpper(string(r[:1])) + string(r[1:])
	}
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// escapeMarker prefixes continuation lines that would otherwise read as a new
// role entry (or that start with the marker itself).
const escapeMarker = `\`

// SerializeHistory renders messages as a transcript, one "Role: content" entry
// per message in insertion order.
func SerializeHistory(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.Role.Label())
		b.WriteString(": ")

		for j, line := range strings.Split(m.Content, "\n") {
			if j > 0 {
				b.WriteString("\n")
				if _, _, ok := cutRole(line); ok || strings.HasPrefix(line, escapeMarker) {
					b.WriteString(escapeMarker)
				}
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

// ParseHistory reverses SerializeHistory. Lines without a role prefix belong
// to the previous message, so multi-line replies survive the round trip.
func ParseHistory(transcript string) ([]Message, error) {
	if transcript == "" {
		return nil, nil
	}

	var messages []Message
	for _, line := range strings.Split(transcript, "\n") {
		if role, content, ok := cutRole(line); ok {
			messages = append(messages, Message{Role: role, Content: content})
			continue
		}

		if len(messages) == 0 {
			return nil, fmt.Errorf("transcript must start with a role prefix: %q", line)
		}
		last := &messages[len(messages)-1]
		last.Content += "\n" + strings.TrimPrefix(line, escapeMarker)
	}

	return messages, nil
}

func cutRole(line string) (Role, string, bool) {
	for _, role := range []Role{RoleUser, RoleAssistant} {
		if rest, ok := strings.CutPrefix(line, role.Label()+":"); ok {
			return role, strings.TrimPrefix(rest, " "), true
		}
	}
	return "", "", false
}
