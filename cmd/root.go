package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pmanser/svnd/internal/cmd"
	"github.com/pmanser/svnd/internal/flags"
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute runs the root command and reports any error to the caller.
func Execute() error {
	rootCmd, err := NewRootCmd(&cmd.BaseCmd{})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

func NewRootCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: baseCmd,
	}

	rootCmd := &cobra.Command{
		Use:          "svnd <command> [args]",
		Short:        "'svnd' serves and manages browsable Subversion repositories.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	initCmd, err := NewInitCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	daemonCmd, err := NewDaemonCmd(baseCmd)
	if err != nil {
		return nil, err
	}
	reposCmd, err := NewReposCmd(baseCmd)
	if err != nil {
		return nil, err
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(reposCmd)

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'svnd' daemon serves repository metadata over an HTTP API, backed by a
TTL cache in front of the Subversion client, and coordinates tag, branch and
repository creation on behalf of authenticated users.`
}
