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
	"os"

	"github.com/fatih/color"
	"github.com/mamameal/docgenctl/kernel/codec"
	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/mamameal/docgenctl/kernel/engine"
	"github.com/mamameal/docgenctl/kernel/gateway"
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/sink"
	"github.com/mamameal/docgenctl/kernel/telemetry"
	"github.com/michaelquigley/pfxlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	APIURL     string
	Verbose    bool
}

type commandFactory func(g *GlobalOptions) *cobra.Command

var subcommands []commandFactory

func NewRootCommand() *cobra.Command {
	g := &GlobalOptions{}
	root := &cobra.Command{
		Use:           "docgenctl",
		Short:         "Operator client for the document-generation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(g.Verbose)
		},
	}
	root.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "path to YAML configuration file (default $HOME/.docgenctl/config.yml)")
	root.PersistentFlags().StringVar(&g.APIURL, "api-url", "", "backend base URL (overrides config and "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "enable debug logging")

	for _, factory := range subcommands {
		root.AddCommand(factory(g))
	}
	return root
}

func initLogging(verbose bool) {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	pfxlog.GlobalInit(level, pfxlog.DefaultOptions().SetTrimPrefix("github.com/mamameal/"))
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

func (g *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.APIURL != "" {
		cfg.APIURL = g.APIURL
	}
	return cfg, nil
}

// session is everything a command needs to talk to the backend.
type session struct {
	cfg      *config.Config
	client   *gateway.Client
	console  *engine.Console
	recorder telemetry.Recorder
}

func (s *session) Close() {
	s.recorder.Close()
}

func (g *GlobalOptions) openSession(cmd *cobra.Command, sinkOverride *config.SinkConfig) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if sinkOverride != nil {
		cfg.Sink = *sinkOverride
	}

	artifactSink, err := sink.FromConfig(cfg.Sink)
	if err != nil {
		return nil, err
	}
	var codecOpts []codec.Option
	if !cfg.SkipWorkbookCheck {
		codecOpts = append(codecOpts, codec.WithWorkbookCheck())
	}

	client := gateway.NewClient(cfg.APIURL, gateway.WithTimeout(cfg.Timeout))
	recorder := telemetry.FromConfig(cfg.Influx)
	console, err := engine.NewConsole(client,
		engine.WithNotifier(newTerminalNotifier(cmd)),
		engine.WithObserver(recorder.Observe),
		engine.WithMaterializer(codec.New(artifactSink, codecOpts...)),
	)
	if err != nil {
		recorder.Close()
		return nil, err
	}
	pfxlog.Logger().Debugf("using backend %s", client.BaseURL())
	return &session{cfg: cfg, client: client, console: console, recorder: recorder}, nil
}

type terminalNotifier struct {
	cmd *cobra.Command
}

func newTerminalNotifier(cmd *cobra.Command) *terminalNotifier {
	return &terminalNotifier{cmd: cmd}
}

var (
	okMark  = color.New(color.FgGreen, color.Bold).SprintFunc()
	errMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

func (n *terminalNotifier) Notify(notice engine.Notice) {
	if notice.Level == engine.LevelError {
		fmt.Fprintf(n.cmd.ErrOrStderr(), "%s %s: %s\n", errMark("✘"), notice.Label, notice.Message)
		return
	}
	fmt.Fprintf(n.cmd.OutOrStdout(), "%s %s\n", okMark("✔"), notice.Message)
}

func kindLabel(kind model.Kind) string {
	spec, err := model.GetKind(kind)
	if err != nil {
		return string(kind)
	}
	return spec.Label
}
