// Package translate replaces the original implementation's process-wide
// current-language lock with a capability the engine receives instead: a
// Translator passed in by the caller rather than read from global state, so
// the parser/executor core stays pure and testable without touching it.
package translate

import "fmt"

// Translator renders a message key (plus optional format args) as
// user-facing text. The engine never parses or brances on a Translator's
// output — it only carries messages that were already going to be shown to
// the operator (notes, not the error taxonomy in spec.md §7).
type Translator interface {
	T(key string, args ...interface{}) string
}

// English is the zero-setup Translator: it formats the key with args when
// given any, and returns the key verbatim otherwise. Callers that have no
// localization catalogue wired in (every caller in this module) use this.
type English struct{}

func (English) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

// Default is the Translator engine.Options falls back to when the caller
// doesn't supply one.
var Default Translator = English{}
