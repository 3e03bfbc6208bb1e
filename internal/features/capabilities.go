package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/util"
)

// Capabilities describes every provider in this package. encoding is the
// position encoding negotiated with the client.
func Capabilities(encoding string, inlayHints bool) lspext.ServerCapabilities {
	return lspext.ServerCapabilities{
		ServerCapabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: util.Ptr(true),
				Change:    util.Ptr(protocol.TextDocumentSyncKindFull),
				Save:      protocol.SaveOptions{IncludeText: util.Ptr(false)},
			},
			CompletionProvider: &protocol.CompletionOptions{TriggerCharacters: CompletionTriggers},
			HoverProvider:      true,
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters:   SignatureTriggers,
				RetriggerCharacters: SignatureRetriggers,
			},
			DefinitionProvider:      true,
			TypeDefinitionProvider:  true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			FoldingRangeProvider:    true,
			SemanticTokensProvider: protocol.SemanticTokensOptions{
				Legend: SemanticTokenLegend(),
				Full:   true,
			},
			CodeLensProvider: &protocol.CodeLensOptions{ResolveProvider: util.Ptr(false)},
		},
		PositionEncoding:  encoding,
		InlayHintProvider: inlayHints,
	}
}
