// # cmd/cstyle/dump.go
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cstyle/internal/engine/analysis"
	"cstyle/internal/engine/lang"
	"cstyle/internal/shared/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true).
			MarginTop(1)

	nameStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))
)

func renderDump(state *lang.ParseState, diags []analysis.Diagnostic) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(state.URI))
	b.WriteString("\n")
	if state.Tree == nil {
		b.WriteString(errorStyle.Render("document could not be parsed"))
		b.WriteString("\n")
	}

	local := func(loc *lang.Location) bool {
		return loc != nil && loc.URI == state.URI
	}
	at := func(loc *lang.Location) string {
		if loc == nil {
			return mutedStyle.Render("builtin")
		}
		return mutedStyle.Render(fmt.Sprintf("%d:%d", loc.Range.Start.Line+1, loc.Range.Start.Character+1))
	}

	b.WriteString(sectionStyle.Render("Types"))
	b.WriteString("\n")
	for _, name := range util.SortedStringKeys(state.Symbols.Types) {
		typ := state.Symbols.Types[name]
		if typ.Builtin {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", nameStyle.Render(name), at(typ.Declaration))
		for _, field := range util.SortedStringKeys(typ.Fields) {
			fmt.Fprintf(&b, "    %s\n", typ.Fields[field].Signature(field))
		}
	}

	b.WriteString(sectionStyle.Render("Functions"))
	b.WriteString("\n")
	for _, name := range util.SortedStringKeys(state.Symbols.Functions) {
		fn := state.Symbols.Functions[name]
		if !local(fn.Declaration) {
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s\n", nameStyle.Render(fn.Label(name)), at(fn.Declaration),
			mutedStyle.Render(fmt.Sprintf("%d references", len(fn.References))))
	}

	b.WriteString(sectionStyle.Render("Defines"))
	b.WriteString("\n")
	for _, name := range util.SortedStringKeys(state.Symbols.Defines) {
		def := state.Symbols.Defines[name]
		if !local(def.Declaration) {
			continue
		}
		fmt.Fprintf(&b, "  %s = %s %s\n", nameStyle.Render(name), def.InsertText, at(def.Declaration))
	}

	b.WriteString(sectionStyle.Render("Scopes"))
	b.WriteString("\n")
	if state.Global != nil {
		renderScope(&b, state.Global, "global", 1, local)
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Diagnostics (%d)", len(diags))))
	b.WriteString("\n")
	for _, d := range diags {
		style := hintStyle
		if d.Severity == analysis.SeverityError {
			style = errorStyle
		}
		fmt.Fprintf(&b, "  %d:%d %s\n", d.Range.Start.Line+1, d.Range.Start.Character+1, style.Render(d.Message))
	}
	return b.String()
}

func renderScope(b *strings.Builder, scope *lang.Scope, label string, depth int, local func(*lang.Location) bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s\n", indent, nameStyle.Render(label))
	for _, name := range util.SortedStringKeys(scope.Vars) {
		v := scope.Vars[name]
		if !local(v.Declaration) {
			continue
		}
		line := v.Signature(name)
		if v.Unused {
			line += " " + mutedStyle.Render("(unused)")
		}
		fmt.Fprintf(b, "%s  %s\n", indent, line)
	}
	for _, child := range scope.Scopes {
		renderScope(b, child.Scope, fmt.Sprintf("lines %d-%d", child.StartLine+1, child.EndLine+1), depth+1, local)
	}
}
