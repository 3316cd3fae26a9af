package dispatch

import (
	"unicode"

	"GoCommando/core"
	"GoCommando/core/command"
)

// State is a step of the dispatch of one message.
type State int

const (
	Ignored State = iota
	PrefixMatched
	CommandResolved
	Inhibited
	Executing
	Succeeded
	Failed
)

var stateNames = [...]string{
	Ignored:         "ignored",
	PrefixMatched:   "prefixMatched",
	CommandResolved: "commandResolved",
	Inhibited:       "inhibited",
	Executing:       "executing",
	Succeeded:       "succeeded",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether a dispatch can stop in s.
func (s State) Terminal() bool {
	switch s {
	case Ignored, Inhibited, Succeeded, Failed:
		return true
	}
	return false
}

// Outcome is the final state of a dispatch.
type Outcome struct {
	State   State
	Command *command.Definition
	Args    []string
	// Denial is set when an inhibitor vetoed the command.
	Denial *core.InhibitionDenied
	// Err is a *core.NotFoundError for unknown commands, the denial for
	// inhibited ones and a *core.HandlerExecutionError for failures.
	Err error
}

// Tokenize splits text on whitespace. A double-quoted run is one token
// with the quotes removed; an unterminated quote runs to the end.
func Tokenize(text string) []string {
	var (
		tokens  []string
		current []rune
		quoted  bool
		started bool
	)
	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				tokens = append(tokens, string(current))
				current, started = current[:0], false
			}
		default:
			current = append(current, r)
			started = true
		}
	}
	if started {
		tokens = append(tokens, string(current))
	}
	return tokens
}
