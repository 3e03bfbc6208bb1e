// Package features turns parse states into LSP responses: completion,
// hover, navigation, folding, semantic tokens, inlay hints, code lens,
// signature help, symbols and diagnostics. Every provider is a pure function
// of an immutable ParseState or ScopedView. Positions leave through a
// lspext.Mapper so columns match the negotiated encoding.
package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/resolver"
	"cstyle/internal/shared/util"
)

// CompletionTriggers are the characters that open member completion.
var CompletionTriggers = []string{"."}

// Completion offers struct members when a chain precedes the cursor and
// every visible name otherwise.
func Completion(view *lang.ScopedView) []protocol.CompletionItem {
	members, chained := resolver.CompleteAt(view)
	if chained {
		return memberItems(members)
	}
	return basicItems(view)
}

func memberItems(members []resolver.Member) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(members))
	for _, m := range members {
		item := protocol.CompletionItem{Label: m.Name, Kind: util.Ptr(protocol.CompletionItemKindField)}
		if m.Var != nil {
			item.Detail = util.Ptr(m.Var.Signature(m.Name))
		}
		items = append(items, item)
	}
	return items
}

func basicItems(view *lang.ScopedView) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, kw := range view.Keywords {
		kind := protocol.CompletionItemKindKeyword
		if kw.Kind == lang.KeywordConstant {
			kind = protocol.CompletionItemKindConstant
		}
		items = append(items, protocol.CompletionItem{Label: kw.Label, Kind: &kind})
	}
	for _, name := range util.SortedStringKeys(view.Symbols.Functions) {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   util.Ptr(protocol.CompletionItemKindFunction),
			Detail: util.Ptr(view.Symbols.Functions[name].Label(name)),
		})
	}
	for _, name := range util.SortedStringKeys(view.Symbols.Types) {
		items = append(items, protocol.CompletionItem{Label: name, Kind: util.Ptr(protocol.CompletionItemKindKeyword)})
	}
	for _, name := range util.SortedStringKeys(view.Symbols.Defines) {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   util.Ptr(protocol.CompletionItemKindConstant),
			Detail: util.Ptr(view.Symbols.Defines[name].InsertText),
		})
	}
	for _, name := range util.SortedStringKeys(view.Vars) {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   util.Ptr(protocol.CompletionItemKindVariable),
			Detail: util.Ptr(view.Vars[name].Signature(name)),
		})
	}
	return items
}
