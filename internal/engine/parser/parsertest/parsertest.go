// Package parsertest builds parse states from C snippets for tests.
package parsertest

import (
	"context"
	"strings"
	"testing"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/parser"
)

const SampleURI = "file:///sample.c"

// Sample is a small program exercising macros, globals, a struct and a
// function with locals. The function spans lines 11 to 16.
const Sample = `

        #define myRep 10

        const double global_var;

        struct MyStruct {
            vec3 myField;
            double arrayField[2];
        };

        void main(vec2 param_var) {
            const float init_var = 4;
            vec4 prim_var;
            MyStruct cust_var;
            float array_var[2][3];
        }
        `

// Builder returns a builder for the C grammar.
func Builder(t testing.TB) *parser.Builder {
	t.Helper()
	loader, err := parser.NewGrammarLoader(parser.GrammarC)
	if err != nil {
		t.Fatalf("load grammar: %v", err)
	}
	p, err := parser.NewParser(loader, parser.GrammarC)
	if err != nil {
		t.Fatalf("create parser: %v", err)
	}
	return parser.NewBuilder(p)
}

// Build parses src as SampleURI with facts (empty when nil).
func Build(t testing.TB, src string, facts *lang.FactTable) *lang.ParseState {
	t.Helper()
	if facts == nil {
		facts = lang.EmptyFactTable()
	}
	return Builder(t).Build(context.Background(), SampleURI, src, facts)
}

// BuildWithDefaults parses src against the embedded C fact table.
func BuildWithDefaults(t testing.TB, src string) *lang.ParseState {
	t.Helper()
	facts, err := lang.DefaultFactTable()
	if err != nil {
		t.Fatalf("default facts: %v", err)
	}
	return Build(t, src, facts)
}

// LocationOf returns the location of the first occurrence of item in src.
func LocationOf(t testing.TB, src, item string) *lang.Location {
	t.Helper()
	for i, line := range strings.Split(src, "\n") {
		if col := strings.Index(line, item); col >= 0 {
			return &lang.Location{
				URI: SampleURI,
				Range: lang.Range{
					Start: lang.Position{Line: i, Character: col},
					End:   lang.Position{Line: i, Character: col + len(item)},
				},
			}
		}
	}
	t.Fatalf("%q not found in source", item)
	return nil
}

// PositionOf returns the start of the first occurrence of item on or after
// line from, shifted by offset columns.
func PositionOf(t testing.TB, src, item string, from, offset int) lang.Position {
	t.Helper()
	for i, line := range strings.Split(src, "\n") {
		if i < from {
			continue
		}
		if col := strings.Index(line, item); col >= 0 {
			return lang.Position{Line: i, Character: col + offset}
		}
	}
	t.Fatalf("%q not found in source from line %d", item, from)
	return lang.Position{}
}
