package models

// CommandType is an outbound control command for the remote engine
type CommandType string

const (
	CommandStart  CommandType = "start"
	CommandPause  CommandType = "pause"
	CommandResume CommandType = "resume"
	CommandReset  CommandType = "reset"
	CommandStep   CommandType = "step"
)

// Valid reports whether c is one of the commands the engine accepts.
func (c CommandType) Valid() bool {
	switch c {
	case CommandStart, CommandPause, CommandResume, CommandReset, CommandStep:
		return true
	}
	return false
}
