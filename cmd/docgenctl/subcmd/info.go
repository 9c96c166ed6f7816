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
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/spf13/cobra"
)

func init() {
	subcommands = append(subcommands, NewInfoCommand)
}

func NewInfoCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the master and template files active on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.openSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			s.console.Mount(cmd.Context())
			renderMetadata(cmd.OutOrStdout(), s.console.Metadata(model.GroupMaster))
			renderMetadata(cmd.OutOrStdout(), s.console.Metadata(model.GroupTemplate))
			return nil
		},
	}
}
