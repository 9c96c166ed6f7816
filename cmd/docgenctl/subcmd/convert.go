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
	"encoding/json"
	"fmt"

	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/slot"
	"github.com/spf13/cobra"
)

func init() {
	subcommands = append(subcommands, NewOrderCommand, NewSealCommand)
}

type ConvertCommand struct {
	global  *GlobalOptions
	kind    model.Kind
	OutDir  string
	Preview bool
}

func NewOrderCommand(g *GlobalOptions) *cobra.Command {
	convertCmd := &ConvertCommand{global: g, kind: model.OrderInvoice}

	cmd := &cobra.Command{
		Use:   "order PDF",
		Short: "Create the count sheet and delivery note from an order PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  convertCmd.run,
	}
	cmd.Flags().StringVarP(&convertCmd.OutDir, "out", "o", "", "save artifacts into this directory instead of the configured sink")

	return cmd
}

func NewSealCommand(g *GlobalOptions) *cobra.Command {
	convertCmd := &ConvertCommand{global: g, kind: model.SealLabels}

	cmd := &cobra.Command{
		Use:   "seal PDF",
		Short: "Create the seal label sheet from a seal PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  convertCmd.run,
	}
	cmd.Flags().StringVarP(&convertCmd.OutDir, "out", "o", "", "save artifacts into this directory instead of the configured sink")
	cmd.Flags().BoolVar(&convertCmd.Preview, "preview", false, "print the extracted blocks")

	return cmd
}

func (c *ConvertCommand) run(cmd *cobra.Command, args []string) error {
	var sinkOverride *config.SinkConfig
	if c.OutDir != "" {
		sinkOverride = &config.SinkConfig{Type: "dir", Dir: c.OutDir}
	}

	s, err := c.global.openSession(cmd, sinkOverride)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.console.Select(c.kind, model.LocalFile(args[0])); err != nil {
		return err
	}
	status, err := s.console.Submit(cmd.Context(), c.kind)
	if err != nil {
		return err
	}
	if status.State == slot.Failed {
		return fmt.Errorf("%s failed", kindLabel(c.kind))
	}

	downloads, materializeErr := s.console.Materialize(cmd.Context(), c.kind)
	if len(downloads) > 0 {
		renderDownloads(cmd.OutOrStdout(), downloads)
	}
	if materializeErr != nil {
		return materializeErr
	}

	sl, err := s.console.Slot(c.kind)
	if err != nil {
		return err
	}
	result, _ := sl.LastResult()
	if c.kind == model.SealLabels {
		fmt.Fprintf(cmd.OutOrStdout(), "%d blocks extracted\n", len(result.Blocks))
		if c.Preview {
			preview, err := json.MarshalIndent(result.Blocks, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(preview))
		}
	}
	return nil
}
