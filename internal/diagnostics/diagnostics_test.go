/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/diagnostics"
)

func rng(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: startLine, Character: startChar},
		End:   protocol.Position{Line: endLine, Character: endChar},
	}
}

func TestRangesOverlapInclusiveEndpoints(t *testing.T) {
	require.True(t, diagnostics.RangesOverlap(rng(0, 0, 0, 5), rng(0, 5, 0, 10)), "touching endpoints count as overlapping")
	require.True(t, diagnostics.RangesOverlap(rng(1, 0, 3, 0), rng(2, 0, 2, 5)))
	require.False(t, diagnostics.RangesOverlap(rng(0, 0, 0, 5), rng(0, 6, 0, 10)))
}

func TestMergeSyntaxAlwaysWinsOverOverlappingSemantic(t *testing.T) {
	severityErr := protocol.DiagnosticSeverityError
	_ = severityErr
	syntax := []diagnostics.Diagnostic{
		{Range: rng(0, 0, 0, 5), Severity: protocol.DiagnosticSeverityError, Source: "syntax", Message: "unexpected token"},
	}
	semantic := []diagnostics.Diagnostic{
		{Range: rng(0, 2, 0, 3), Severity: protocol.DiagnosticSeverityError, Source: "gren", Message: "type mismatch"},
	}

	merged := diagnostics.Merge(syntax, semantic)
	require.Len(t, merged, 1)
	require.Equal(t, "syntax", merged[0].Source)
}

func TestMergeKeepsNonOverlappingSemantic(t *testing.T) {
	syntax := []diagnostics.Diagnostic{
		{Range: rng(0, 0, 0, 5), Severity: protocol.DiagnosticSeverityError, Source: "syntax", Message: "unexpected token"},
	}
	semantic := []diagnostics.Diagnostic{
		{Range: rng(5, 0, 5, 3), Severity: protocol.DiagnosticSeverityWarning, Source: "gren", Message: "unused import"},
	}

	merged := diagnostics.Merge(syntax, semantic)
	require.Len(t, merged, 2)
}

func TestToProtocolAttachesSourceTag(t *testing.T) {
	d := diagnostics.Diagnostic{Range: rng(0, 0, 0, 1), Severity: protocol.DiagnosticSeverityWarning, Source: "gren", Message: "unused variable"}
	p := diagnostics.ToProtocol(d)
	require.Equal(t, "unused variable", p.Message)
	require.NotNil(t, p.Source)
	require.Equal(t, "gren", *p.Source)
}
