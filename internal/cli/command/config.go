package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/internal/infra/confloader"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Configuration inspection",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration (defaults, file, environment)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "List the keys set by the file, environment or flags and where each came from",
					},
				},
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "FILE",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	cfg, loader, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.Bool("sources") {
		return f.Format(stdout(c), configSources(loader))
	}
	return f.Format(stdout(c), cfg)
}

// configSource is one key set by a configuration layer.
type configSource struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

// configSources lists every key the loader holds, sorted by key. Keys left
// at their defaults are not listed.
func configSources(loader *confloader.Loader) []configSource {
	all := loader.All()
	keys := loader.Keys()
	rows := make([]configSource, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, configSource{
			Key:    key,
			Value:  fmt.Sprint(all[key]),
			Source: loader.Source(key),
		})
	}
	return rows
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = ParseGlobalFlags(c).ConfigFile
	}
	if path == "" {
		return fmt.Errorf("usage: %s config validate FILE", c.App.Name)
	}

	cfg := config.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := config.Verify(config.Sanitize(cfg)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(stdout(c), "%s: configuration is valid\n", path)
	return nil
}
