package db

import (
	"fmt"
	"strings"
)

// CondBuilder accumulates (predicate fragment, bound value) pairs for
// queries where the set of filters is not known upfront. Fragments use
// %d as the placeholder for the positional parameter number, so the
// resulting $N indexes stay correct no matter which filters are present.
type CondBuilder struct {
	frags []string
	args  []any
}

// Add appends a predicate with a single bound value, e.g.
// Add("e.muscle_main = $%d", muscle).
func (b *CondBuilder) Add(frag string, arg any) {
	b.args = append(b.args, arg)
	b.frags = append(b.frags, fmt.Sprintf(frag, len(b.args)))
}

// Add2 appends a predicate binding two values, e.g.
// Add2("(e.category = $%d OR e.categories LIKE $%d)", cat, pattern).
func (b *CondBuilder) Add2(frag string, arg1, arg2 any) {
	b.args = append(b.args, arg1, arg2)
	b.frags = append(b.frags, fmt.Sprintf(frag, len(b.args)-1, len(b.args)))
}

// NextArg binds a value outside the WHERE clause (LIMIT, a trailing id)
// and returns its placeholder index.
func (b *CondBuilder) NextArg(arg any) int {
	b.args = append(b.args, arg)
	return len(b.args)
}

// Where returns the fragments joined with AND, prefixed with "WHERE ",
// or an empty string if no conditions were added.
func (b *CondBuilder) Where() string {
	if len(b.frags) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.frags, " AND ")
}

// Set returns the fragments joined with ", " for UPDATE statements.
func (b *CondBuilder) Set() string {
	return strings.Join(b.frags, ", ")
}

func (b *CondBuilder) Empty() bool {
	return len(b.frags) == 0
}

func (b *CondBuilder) Args() []any {
	return b.args
}
