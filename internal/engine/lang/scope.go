package lang

// Scope is one lexical region: the variables it declares and the nested
// regions it contains.
type Scope struct {
	Vars   map[string]*Var
	Scopes []ChildScope
}

// ChildScope is a nested scope with the inclusive line range it covers.
type ChildScope struct {
	StartLine int
	EndLine   int
	Scope     *Scope
}

// Covers reports whether line falls inside the child's range.
func (c ChildScope) Covers(line int) bool {
	return c.StartLine <= line && line <= c.EndLine
}

func NewScope() *Scope {
	return &Scope{Vars: make(map[string]*Var)}
}

// Declare records name in this scope. A later declaration of the same name
// replaces the earlier one.
func (s *Scope) Declare(name string, v *Var) {
	s.Vars[name] = v
}

// Attach adds a finished child scope covering [start, end].
func (s *Scope) Attach(start, end int, child *Scope) {
	s.Scopes = append(s.Scopes, ChildScope{StartLine: start, EndLine: end, Scope: child})
}

// VisibleAt flattens every variable visible at pos. Inner declarations
// overwrite outer ones of the same name. Every child whose range covers the
// line is entered, so overlapping children are merged in declaration order.
func (s *Scope) VisibleAt(pos Position) map[string]*Var {
	out := make(map[string]*Var)
	s.collect(pos.Line, out)
	return out
}

func (s *Scope) collect(line int, out map[string]*Var) {
	for name, v := range s.Vars {
		out[name] = v
	}
	for _, child := range s.Scopes {
		if child.Covers(line) {
			child.Scope.collect(line, out)
		}
	}
}

// LookupAt returns the innermost declaration of name visible at line.
func (s *Scope) LookupAt(name string, line int) *Var {
	var found *Var
	if v, ok := s.Vars[name]; ok {
		found = v
	}
	for _, child := range s.Scopes {
		if !child.Covers(line) {
			continue
		}
		if v := child.Scope.LookupAt(name, line); v != nil {
			found = v
		}
	}
	return found
}

// Each visits every scope depth-first, parents before children.
func (s *Scope) Each(fn func(scope *Scope, start, end int)) {
	for _, child := range s.Scopes {
		fn(child.Scope, child.StartLine, child.EndLine)
		child.Scope.Each(fn)
	}
}
