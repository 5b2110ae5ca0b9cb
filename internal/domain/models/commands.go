package models

import "strings"

// CommandType enumerates the chat commands understood by the pantry bot.
type CommandType string

const (
	CommandAdd     CommandType = "add"
	CommandRemove  CommandType = "remove"
	CommandList    CommandType = "list"
	CommandUnknown CommandType = "unknown"
)

// Command is a parsed chat instruction. Arg keeps the original casing of the
// item name or search text.
type Command struct {
	Type CommandType
	Raw  string
	Arg  string
}

// ParseCommand derives a Command from a free-form text message such as
// "/add Eggs" or "list an".
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	cmd := Command{Type: CommandUnknown, Raw: message}
	if trimmed == "" {
		return cmd
	}

	head, rest, _ := strings.Cut(trimmed, " ")
	switch strings.TrimPrefix(strings.ToLower(head), "/") {
	case string(CommandAdd), "+":
		cmd.Type = CommandAdd
	case string(CommandRemove), "rm", "-":
		cmd.Type = CommandRemove
	case string(CommandList), "ls", "search":
		cmd.Type = CommandList
	default:
		return cmd
	}

	cmd.Arg = strings.TrimSpace(rest)
	return cmd
}
