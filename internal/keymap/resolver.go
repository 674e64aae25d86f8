package keymap

import (
	"strings"

	"github.com/samber/lo"
)

// Resolver maps command words to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys
}

// NewResolver creates a resolver from bindings. A key written with an
// argument placeholder ("g <time>") binds its first word.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			word, _, _ := strings.Cut(key, " ")
			r.bindings[word] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = lo.Uniq(keys)
	}
	return r
}

// Default returns a resolver over All.
func Default() *Resolver {
	return NewResolver(All)
}

// Resolve returns the action for a command word, or empty string if not
// bound. Matching ignores case and surrounding space; an empty word is
// the enter key.
func (r *Resolver) Resolve(word string) Action {
	return r.bindings[normalize(word)]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

func normalize(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "enter"
	}
	return word
}
