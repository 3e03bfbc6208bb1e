package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
)

// FoldingRanges emits one region per nested scope, parents first.
func FoldingRanges(global *lang.Scope) []protocol.FoldingRange {
	out := []protocol.FoldingRange{}
	if global == nil {
		return out
	}
	region := string(protocol.FoldingRangeKindRegion)
	global.Each(func(_ *lang.Scope, start, end int) {
		out = append(out, protocol.FoldingRange{
			StartLine: protocol.UInteger(start),
			EndLine:   protocol.UInteger(end),
			Kind:      &region,
		})
	})
	return out
}
