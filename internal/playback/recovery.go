package playback

// RecoveryPolicy decides what to do about a classified engine error.  attempt counts errors of the same kind within
// the session, starting at 1.
type RecoveryPolicy interface {
	Recover(err EngineError, attempt int) []Command
}

// RecoveryFunc adapts a function to RecoveryPolicy
type RecoveryFunc func(err EngineError, attempt int) []Command

func (f RecoveryFunc) Recover(err EngineError, attempt int) []Command {
	return f(err, attempt)
}

// LogOnly records the error and does nothing else
var LogOnly RecoveryPolicy = RecoveryFunc(func(EngineError, int) []Command { return nil })

// ReloadSource asks the engine to reload the video URL, up to MaxAttempts times per session
type ReloadSource struct {
	MaxAttempts int
}

func (r ReloadSource) Recover(_ EngineError, attempt int) []Command {
	if attempt > r.MaxAttempts {
		return nil
	}
	return []Command{{Kind: CommandReload}}
}

// DefaultRecovery logs every error kind
func DefaultRecovery() map[ErrorKind]RecoveryPolicy {
	return map[ErrorKind]RecoveryPolicy{
		ErrorKindSource:  LogOnly,
		ErrorKindTimeout: LogOnly,
		ErrorKindDecoder: LogOnly,
		ErrorKindUnknown: LogOnly,
	}
}
