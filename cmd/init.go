package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pmanser/svnd/internal/cmd"
	cmdopts "github.com/pmanser/svnd/internal/cmd/options"
	"github.com/pmanser/svnd/internal/config"
	"github.com/pmanser/svnd/internal/flags"
)

type InitCmd struct {
	*cmd.BaseCmd
	cfgInitializer config.Initializer
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: opts.ConfigInitializer,
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Creates a starter `svnd` configuration file",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	return cobraCommand, nil
}

func (c *InitCmd) longDescription() string {
	return fmt.Sprintf(
		"Creates a starter %s configuration file with the repository map, backend, "+
			"cache and session sections ready to fill in.\n\n"+
			"The configuration file path can be overridden using the `--%s` flag or the `%s` environment variable",
		flags.DefaultConfigFile,
		flags.FlagNameConfigFile,
		flags.EnvVarConfigFile,
	)
}

func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	initFilePath := flags.ConfigFile

	// With the default value we create the file in the current working directory.
	if initFilePath == flags.DefaultConfigFile {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not determine current directory: %w", err)
		}
		initFilePath = filepath.Join(cwd, flags.DefaultConfigFile)
	}

	if err := c.cfgInitializer.Init(initFilePath); err != nil {
		return err
	}

	logger.Info("Created configuration file", "path", initFilePath)
	_, err := fmt.Fprintf(cobraCmd.OutOrStdout(), "Created configuration file: %s\n", initFilePath)

	return err
}
