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
package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/lsp/types"
)

// Shutdown handles the LSP shutdown request. The client is expected to send
// exit next, at which point the process-level Server.Close releases the
// symbol index and other held resources; Shutdown itself only tears down
// the workspace handle per its Cleanup contract.
func Shutdown(ctx types.ServerContext, context *glsp.Context) error {
	context.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: "gren-lsp server shutting down...",
	})

	if ws := ctx.Workspace(); ws != nil {
		if err := ws.Cleanup(); err != nil {
			context.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
				Type:    protocol.MessageTypeWarning,
				Message: fmt.Sprintf("Warning: error during workspace cleanup: %v", err),
			})
		}
	}

	return nil
}
