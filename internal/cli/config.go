package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Makepad-fr/bookshop/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (e *env) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
		Args:  exactArgs(0, "config <show|init>"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usagef("usage: bookshop config <show|init>")
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig(cmd)
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Redis.Password != "" {
				shown.Redis.Password = "********"
			}
			out, err := yaml.Marshal(&shown)
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file (default ./" + config.ProjectConfigFile + ")",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usagef("usage: bookshop config init [path]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig(cmd)
			if err != nil {
				return err
			}
			path := config.ProjectConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("stat: %w", err)
				}
			}
			if err := cfg.SaveToFile(path); err != nil {
				return err
			}
			e.p.OK("wrote " + path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
