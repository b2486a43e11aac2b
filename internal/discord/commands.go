package discord

import (
	"strings"
)

// CommandKind names a supported prefix command.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandLookup
	CommandStats
)

var commandAliases = map[string]CommandKind{
	"lookup":    CommandLookup,
	"Lookup":    CommandLookup,
	"search":    CommandLookup,
	"stats":     CommandStats,
	"Stats":     CommandStats,
	"analytics": CommandStats,
}

// Command is a parsed prefix command.
type Command struct {
	Kind CommandKind
	Name string
	Args []string
}

// ParseCommand splits content into a command when it starts with prefix.
// Aliases are matched case-sensitively.
func ParseCommand(prefix, content string) (Command, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return Command{}, false
	}
	kind, ok := commandAliases[fields[0]]
	if !ok {
		return Command{}, false
	}
	return Command{Kind: kind, Name: fields[0], Args: fields[1:]}, true
}

// MentionedUserID extracts a user id from <@id>, <@!id> or a bare id.
func MentionedUserID(arg string) (string, bool) {
	id := arg
	if strings.HasPrefix(arg, "<@") && strings.HasSuffix(arg, ">") {
		id = strings.TrimPrefix(strings.TrimSuffix(arg[2:], ">"), "!")
	}
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
