package playback

import (
	"fmt"
	"time"
)

// CommandKind identifies an instruction for the engine
type CommandKind uint8

const (
	CommandLaunch CommandKind = iota + 1
	CommandPlay
	CommandPause
	CommandSeek
	CommandEnterPIP
	CommandSetMaxBitrate
	CommandReload
)

func (k CommandKind) String() string {
	switch k {
	case CommandLaunch:
		return "launch"
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandSeek:
		return "seek"
	case CommandEnterPIP:
		return "enter-pip"
	case CommandSetMaxBitrate:
		return "set-max-bitrate"
	case CommandReload:
		return "reload"
	default:
		return fmt.Sprintf("command(%d)", uint8(k))
	}
}

// Command is produced by Machine.Apply and executed by the Session against the engine
type Command struct {
	Kind CommandKind
	// Seconds and Tolerance apply to CommandSeek
	Seconds   float64
	Tolerance time.Duration
	// Generation identifies the seek sequence a CommandSeek belongs to
	Generation uint64
	// Bitrate applies to CommandSetMaxBitrate.  Zero restores automatic selection.
	Bitrate int
}

func playCommand() Command  { return Command{Kind: CommandPlay} }
func pauseCommand() Command { return Command{Kind: CommandPause} }
