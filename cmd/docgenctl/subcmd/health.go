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
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	subcommands = append(subcommands, NewHealthCommand)
}

func NewHealthCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.openSession(cmd, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend %s is not healthy: %w", s.client.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s backend %s is up\n", okMark("✔"), s.client.BaseURL())
			return nil
		},
	}
}
