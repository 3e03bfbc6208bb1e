package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/analysis"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/util"
)

// Diagnostics converts analysis findings to their wire form. The result is
// never nil so an empty publish clears stale diagnostics.
func Diagnostics(found []analysis.Diagnostic, m lspext.Mapper) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(found))
	for _, d := range found {
		pd := protocol.Diagnostic{
			Range:    m.Range(d.Range),
			Severity: util.Ptr(protocol.DiagnosticSeverity(d.Severity)),
			Source:   util.Ptr(analysis.Source),
			Message:  d.Message,
		}
		if d.Unnecessary {
			pd.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
		}
		out = append(out, pd)
	}
	return out
}
