// Package lspext carries the LSP 3.17 additions the 3.16 protocol types
// lack: inlay hints, the negotiated position encoding and the capabilities
// that advertise them.
package lspext

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Position encodings a client may offer in general.positionEncodings.
const (
	EncodingUTF8  = "utf-8"
	EncodingUTF16 = "utf-16"
	EncodingUTF32 = "utf-32"
)

// ServerCapabilities extends the 3.16 capabilities with positionEncoding
// and inlayHintProvider. It is encoded only, never decoded.
type ServerCapabilities struct {
	protocol.ServerCapabilities
	PositionEncoding  string `json:"positionEncoding,omitempty"`
	InlayHintProvider bool   `json:"inlayHintProvider,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities                  `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

// InitializeExtensions decodes the initialize params fields newer than
// 3.16. It is read from the same raw params as protocol.InitializeParams.
type InitializeExtensions struct {
	Capabilities struct {
		General struct {
			PositionEncodings []string `json:"positionEncodings,omitempty"`
		} `json:"general"`
	} `json:"capabilities"`
}

// NegotiateEncoding picks utf-8 when the client offers it and falls back to
// utf-16, which every client must support.
func NegotiateEncoding(offered []string) string {
	for _, enc := range offered {
		if enc == EncodingUTF8 {
			return EncodingUTF8
		}
	}
	return EncodingUTF16
}

const MethodTextDocumentInlayHint = protocol.Method("textDocument/inlayHint")

type InlayHintKind protocol.UInteger

const (
	InlayHintKindType      InlayHintKind = 1
	InlayHintKindParameter InlayHintKind = 2
)

type InlayHint struct {
	Position     protocol.Position `json:"position"`
	Label        string            `json:"label"`
	Kind         InlayHintKind     `json:"kind,omitempty"`
	PaddingLeft  bool              `json:"paddingLeft,omitempty"`
	PaddingRight bool              `json:"paddingRight,omitempty"`
}

// InlayHintParams keeps Range optional so older clients that omit it get
// hints for the whole document.
type InlayHintParams struct {
	protocol.WorkDoneProgressParams
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        *protocol.Range                 `json:"range,omitempty"`
}
