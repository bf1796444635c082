package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bucketmap/internal/cli/output"
	"github.com/yndnr/bucketmap/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			f, err := formatter(c)
			if err != nil {
				return err
			}
			if _, ok := f.(*output.TableFormatter); ok {
				fmt.Fprintf(stdout(c), "%s %s\n", c.App.Name, buildinfo.String())
				return nil
			}
			return f.Format(stdout(c), buildinfo.Get())
		},
	}
}
