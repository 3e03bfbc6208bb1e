package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cstyle/internal/engine/analysis"
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/parser/parsertest"
)

const usageSource = `int counter;
int scale(int value, int unused_param) {
    int tmp;
    int result = value * 2;
    counter = counter + 1;
    return result;
}
void run(void) {
    scale(1, 2);
    scale(3);
}
`

func TestAnnotateMarksUsedVariables(t *testing.T) {
	state := parsertest.Build(t, usageSource, nil)
	analysis.Annotate(state)

	require.Len(t, state.Global.Scopes, 2)
	locals := state.Global.Scopes[0].Scope.Vars

	assert.False(t, locals["value"].Unused)
	assert.False(t, locals["result"].Unused)
	assert.True(t, locals["tmp"].Unused)
	assert.True(t, locals["unused_param"].Unused)
	assert.False(t, state.Global.Vars["counter"].Unused)
}

func TestAnnotateRecordsCallReferences(t *testing.T) {
	state := parsertest.Build(t, usageSource, nil)
	analysis.Annotate(state)

	refs := state.Symbols.Functions["scale"].References
	require.Len(t, refs, 2)
	assert.Equal(t, lang.Position{Line: 8, Character: 4}, refs[0].Range.Start)
	assert.Equal(t, lang.Position{Line: 9, Character: 4}, refs[1].Range.Start)
	assert.Equal(t, parsertest.SampleURI, refs[0].URI)
	assert.Empty(t, state.Symbols.Functions["run"].References)
}

func TestAnnotateRespectsShadowing(t *testing.T) {
	src := `int x;
void f(void) {
    int x;
    x = 1;
}
`
	state := parsertest.Build(t, src, nil)
	analysis.Annotate(state)

	assert.True(t, state.Global.Vars["x"].Unused, "outer x is shadowed")
	assert.False(t, state.Global.Scopes[0].Scope.Vars["x"].Unused)
}

func TestAnnotateDoesNotTouchSharedBuiltins(t *testing.T) {
	facts := lang.EmptyFactTable()
	facts.BuiltinVars["errno"] = &lang.Var{PrimaryType: "int", Unused: true}
	facts.Functions["puts"] = &lang.Func{ReturnType: "int"}

	state := parsertest.Build(t, "void f(void) { puts(\"x\"); errno = 0; }\n", facts)
	analysis.Annotate(state)

	assert.False(t, state.Global.Vars["errno"].Unused)
	assert.Len(t, state.Symbols.Functions["puts"].References, 1)
	assert.True(t, facts.BuiltinVars["errno"].Unused)
	assert.Empty(t, facts.Functions["puts"].References)
}

func TestAnnotateNilTree(t *testing.T) {
	assert.NotPanics(t, func() {
		analysis.Annotate(&lang.ParseState{Global: lang.NewScope()})
		analysis.Annotate(nil)
	})
}

func TestDiagnoseUnusedLocals(t *testing.T) {
	state := parsertest.Build(t, usageSource, nil)
	analysis.Annotate(state)

	diags := analysis.Diagnose(state, analysis.DefaultOptions())
	require.Len(t, diags, 2)

	assert.Equal(t, `"unused_param" is declared but never used`, diags[0].Message)
	assert.Equal(t, 1, diags[0].Range.Start.Line)
	assert.Equal(t, `"tmp" is declared but never used`, diags[1].Message)
	for _, d := range diags {
		assert.Equal(t, analysis.SeverityHint, d.Severity)
		assert.True(t, d.Unnecessary)
	}

	none := analysis.Diagnose(state, analysis.Options{Syntax: true})
	assert.Empty(t, none)
}

func TestDiagnoseSyntaxErrors(t *testing.T) {
	state := parsertest.Build(t, "int main(void) {\n    int x = ;\n    return 0;\n}\n", nil)
	analysis.Annotate(state)

	diags := analysis.Diagnose(state, analysis.Options{Syntax: true})
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, analysis.SeverityError, d.Severity)
		assert.Equal(t, 1, d.Range.Start.Line)
	}
}
