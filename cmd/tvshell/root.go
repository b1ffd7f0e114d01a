package main

import (
	"github.com/spf13/cobra"

	"tvshell/internal/app"
	"tvshell/internal/config"
	"tvshell/pkg/errx"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configPath string
	logLevel   string
	dimensions bool
	ephemeral  bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "tvshell",
		Short: "Full-screen browser shell for TVs and kiosks",
		Long: `tvshell opens a single full-screen browser window and asks which URL to show.

The last URL (and, with --dimensions, the requested width and height) is
remembered between runs. The remote's back key walks back through the page
history; when there is no more history, tvshell offers to change the URL or exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return app.New(cfg).Run(cmd.Context(), app.NewPrompter())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error, none")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep preferences in memory only")
	pf.BoolVar(&flags.dimensions, "dimensions", false, "also ask for (and show) a target width and height")

	root.AddCommand(newPrefsCommand(flags), newVersionCommand())
	return root
}

// loadConfig 加载配置，命令行参数优先级最高
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, errx.Wrap(errx.CodeConfigInvalid, err, "load config")
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("dimensions") {
		cfg.Prompt.Dimensions = flags.dimensions
	}
	if flags.ephemeral {
		cfg.Sqlite.Ephemeral = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, errx.Wrap(errx.CodeConfigInvalid, err, "validate config")
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("tvshell " + config.NewConfig().Version)
		},
	}
}
