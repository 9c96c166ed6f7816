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
	"strings"

	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/slot"
	"github.com/spf13/cobra"
)

func init() {
	subcommands = append(subcommands, NewMastersCommand, NewTemplatesCommand)
}

func NewMastersCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masters",
		Short: "Manage master datasets",
	}
	cmd.AddCommand(newUploadCommand(g, model.GroupMaster))
	return cmd
}

func NewTemplatesCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage document templates",
	}
	cmd.AddCommand(newUploadCommand(g, model.GroupTemplate))
	return cmd
}

type UploadCommand struct {
	global *GlobalOptions
	group  model.Group
	Type   string
}

func newUploadCommand(g *GlobalOptions, group model.Group) *cobra.Command {
	uploadCmd := &UploadCommand{global: g, group: group}

	var types []string
	for _, k := range model.KindsInGroup(group) {
		spec, _ := model.GetKind(k)
		types = append(types, spec.WireType)
	}

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: fmt.Sprintf("Replace a %s file on the backend", group),
		Args:  cobra.ExactArgs(1),
		RunE:  uploadCmd.run,
	}
	cmd.Flags().StringVarP(&uploadCmd.Type, "type", "t", "", "one of: "+strings.Join(types, ", "))
	cmd.MarkFlagRequired("type")

	return cmd
}

func (u *UploadCommand) run(cmd *cobra.Command, args []string) error {
	kind, err := model.KindByWireType(u.group, u.Type)
	if err != nil {
		return err
	}

	s, err := u.global.openSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.console.Select(kind, model.LocalFile(args[0])); err != nil {
		return err
	}
	status, err := s.console.Submit(cmd.Context(), kind)
	if err != nil {
		return err
	}
	if status.State == slot.Failed {
		return fmt.Errorf("%s was not updated", kindLabel(kind))
	}

	renderMetadata(cmd.OutOrStdout(), s.console.Metadata(u.group))
	return nil
}
