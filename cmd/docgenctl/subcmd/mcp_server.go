/*
	(c) Copyright The docgenctl Authors

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"github.com/mamameal/docgenctl/kernel/mcp"
	"github.com/michaelquigley/pfxlog"
	"github.com/spf13/cobra"
)

func init() {
	subcommands = append(subcommands, NewMCPServerCommand)
}

func NewMCPServerCommand(g *GlobalOptions) *cobra.Command {
	mcpCmd := &MCPServerCommand{global: g}

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start MCP server for assistant-driven uploads and conversions",
		Long: `Start an MCP (Model Context Protocol) server on stdio that exposes the
operator console to AI assistants.

The server provides tools for:
  - get_metadata: Show the active master and template files
  - upload_master: Replace the product or customer master
  - upload_template: Replace the seal, count sheet or delivery note template
  - convert_order: Create count sheet and delivery note from an order PDF
  - create_seal: Create the seal label sheet from a seal PDF

And resources:
  - docgen://status: Current state of every upload slot`,
		Args: cobra.NoArgs,
		RunE: mcpCmd.run,
	}

	return cmd
}

type MCPServerCommand struct {
	global *GlobalOptions
}

func (m *MCPServerCommand) run(cmd *cobra.Command, args []string) error {
	s, err := m.global.openSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	// stdout belongs to the protocol
	cmd.SetOut(cmd.ErrOrStderr())

	pfxlog.Logger().Infof("starting MCP server on stdio for %s...", s.client.BaseURL())
	server := mcp.NewDocgenMCPServer(s.console)
	return server.ServeStdio()
}
