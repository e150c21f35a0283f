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
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gren-lsp.dev/server/internal/workspace"
	LSP "gren-lsp.dev/server/lsp"
)

// lspCmd represents the lsp command
var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Launch the Gren Language Server",
	Long: `Launch a Language Server Protocol (LSP) server for the Gren programming
language.

The server parses Gren source files, maintains a workspace-wide symbol
index, shells out to the gren compiler for diagnostics, and serves:

- Hover information for values, types and constructors
- Go-to-definition and find-references
- Workspace-wide rename
- Completion for local, imported and qualified names
- Document and workspace symbol search
- Quick-fix code actions derived from compiler diagnostics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// CRITICAL: Redirect all pterm output to stderr immediately to prevent LSP stdout contamination
		pterm.SetDefaultOutput(os.Stderr)

		projectDir := viper.GetString("projectDir")
		root, err := workspace.FindRoot(projectDir)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace root: %w", err)
		}
		ws := workspace.NewContext(root)

		// Determine transport based on boolean flags
		var transport LSP.TransportKind = LSP.TransportStdio // default

		stdioFlag, _ := cmd.Flags().GetBool("stdio")
		tcpFlag, _ := cmd.Flags().GetBool("tcp")
		websocketFlag, _ := cmd.Flags().GetBool("websocket")
		nodejsFlag, _ := cmd.Flags().GetBool("nodejs")

		// Check which transport flag is set
		flagCount := 0
		if stdioFlag {
			transport = LSP.TransportStdio
			flagCount++
		}
		if tcpFlag {
			transport = LSP.TransportTCP
			flagCount++
		}
		if websocketFlag {
			transport = LSP.TransportWebSocket
			flagCount++
		}
		if nodejsFlag {
			transport = LSP.TransportNodeJS
			flagCount++
		}

		// Ensure only one transport flag is set
		if flagCount > 1 {
			return fmt.Errorf("only one transport flag may be specified")
		}

		compilerOpts := LSP.CompilerOptions{
			BinaryPath:  viper.GetString("compilerPath"),
			Concurrency: viper.GetInt("compilerConcurrency"),
			Timeout:     viper.GetDuration("compilerTimeout"),
		}

		server, err := LSP.NewServer(ws, transport, compilerOpts)
		if err != nil {
			return err
		}
		return server.Run()
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().Bool("stdio", false, "Use stdio transport (default)")
	lspCmd.Flags().Bool("tcp", false, "Use TCP transport")
	lspCmd.Flags().Bool("websocket", false, "Use WebSocket transport")
	lspCmd.Flags().Bool("nodejs", false, "Use Node.js transport")
}
