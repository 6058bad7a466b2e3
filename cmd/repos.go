package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pmanser/svnd/internal/cmd"
	cmdopts "github.com/pmanser/svnd/internal/cmd/options"
	"github.com/pmanser/svnd/internal/cmd/output"
	"github.com/pmanser/svnd/internal/config"
	"github.com/pmanser/svnd/internal/flags"
)

// RepoRow is one configured repository as rendered by the 'repos' command.
type RepoRow struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url"  yaml:"url"`
}

// ReposCmd should be used to represent the 'repos' command.
type ReposCmd struct {
	*cmd.BaseCmd
	Format    string
	cfgLoader config.Loader
}

// NewReposCmd creates a newly configured (Cobra) command.
func NewReposCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ReposCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "repos [--format]",
		Short: "Lists the configured repositories",
		Long:  "Lists the repositories the daemon is configured to serve, with their backend URLs",
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Format,
		"format",
		string(output.FormatText),
		"Output format: text, json or yaml",
	)

	return cobraCommand, nil
}

// run is configured (via NewReposCmd) to be called by the Cobra framework when the command is executed.
func (c *ReposCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := output.NewHandler[RepoRow](
		output.Format(c.Format),
		cobraCmd.OutOrStdout(),
		func(w io.Writer, r RepoRow) error {
			_, err := fmt.Fprintf(w, "%s\t%s\n", r.Name, r.URL)
			return err
		},
	)
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	rows := make([]RepoRow, 0, len(cfg.Repositories))
	for name, url := range cfg.Repositories {
		rows = append(rows, RepoRow{Name: name, URL: url})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return handler.HandleResults(rows...)
}
