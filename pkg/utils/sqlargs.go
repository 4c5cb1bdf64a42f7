package utils

import "strconv"

// Args collects positional parameters for SQL assembled at runtime
// (optional filters, partial updates). Add returns the placeholder to embed.
type Args struct {
	vals []any
}

func (a *Args) Add(v any) string {
	a.vals = append(a.vals, v)
	return "$" + strconv.Itoa(len(a.vals))
}

func (a *Args) Values() []any { return a.vals }

func (a *Args) Len() int { return len(a.vals) }

// SetClauses accumulates "col = $n" fragments for an UPDATE.
type SetClauses struct {
	Args  *Args
	parts []string
}

func NewSetClauses(args *Args) *SetClauses { return &SetClauses{Args: args} }

func (s *SetClauses) Set(col string, v any) {
	s.parts = append(s.parts, col+" = "+s.Args.Add(v))
}

func (s *SetClauses) Parts() []string { return s.parts }

func (s *SetClauses) Empty() bool { return len(s.parts) == 0 }

// SetIfPresent adds col when v is non-nil.
func SetIfPresent[T any](s *SetClauses, col string, v *T) {
	if v != nil {
		s.Set(col, *v)
	}
}
