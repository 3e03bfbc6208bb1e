package analysis

import (
	"fmt"
	"sort"
	"strings"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
)

// Severity follows the LSP numbering.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// Source is reported on every diagnostic.
const Source = "cstyle"

type Diagnostic struct {
	Range    lang.Range
	Severity Severity
	Message  string
	// Unnecessary asks the client to render the range faded out.
	Unnecessary bool
}

// Options selects which diagnostic families are produced.
type Options struct {
	Syntax bool
	Unused bool
}

// DefaultOptions enables every family.
func DefaultOptions() Options {
	return Options{Syntax: true, Unused: true}
}

// Diagnose reports syntax errors and unused locals. Annotate must have run
// on state first or every local is reported as unused. The result is sorted
// by position.
func Diagnose(state *lang.ParseState, opts Options) []Diagnostic {
	var out []Diagnostic
	if state == nil {
		return out
	}
	if opts.Syntax && state.Tree != nil && state.Tree.HasErrors {
		out = append(out, syntaxErrors(state.Tree.Root)...)
	}
	if opts.Unused && state.Global != nil {
		out = append(out, unusedLocals(state)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Range.Start, out[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return out
}

func syntaxErrors(root syntax.Node) []Diagnostic {
	var out []Diagnostic
	syntax.Walk(root, func(n syntax.Node) bool {
		if !n.IsError() {
			return true
		}
		msg := "syntax error"
		if n.Kind() != "ERROR" {
			msg = fmt.Sprintf("missing %s", strings.Trim(n.Kind(), `"`))
		}
		out = append(out, Diagnostic{
			Range:    lang.RangeOf(n.Span()),
			Severity: SeverityError,
			Message:  msg,
		})
		// One report per error region.
		return false
	})
	return out
}

// unusedLocals reports function-level variables never read. Globals are
// left alone since other translation units may use them.
func unusedLocals(state *lang.ParseState) []Diagnostic {
	var out []Diagnostic
	state.Global.Each(func(scope *lang.Scope, _, _ int) {
		for name, v := range scope.Vars {
			if !v.Unused || v.Declaration == nil || v.Declaration.URI != state.URI {
				continue
			}
			out = append(out, Diagnostic{
				Range:       v.Declaration.Range,
				Severity:    SeverityHint,
				Message:     fmt.Sprintf("%q is declared but never used", name),
				Unnecessary: true,
			})
		}
	})
	return out
}
