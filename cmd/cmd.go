// Package cmd implements the namaadhu command line.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/namaadhu/namaadhu/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// buildArgs is reported by the daemon's system.getVersion.
var buildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	buildArgs = bArgs
	app := cli.App{
		Name:                  "namaadhu",
		HelpName:              "namaadhu",
		Usage:                 "Maldivian prayer times, current and upcoming.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "namaadhu <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "runs the background service",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             daemon,
				Flags:              daemonFlags,
			},
			{
				Name:               "islands",
				Aliases:            []string{"ls"},
				Usage:              "lists the islands",
				UsageText:          "islands [search]",
				Description:        IslandsDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             islands,
			},
			{
				Name:               "select",
				Aliases:            []string{"s"},
				Usage:              "selects the island to follow",
				UsageText:          "select <island id>",
				Description:        SelectDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             selectIsland,
			},
			{
				Name:   "selected",
				Usage:  "shows the selected island",
				Action: selected,
			},
			{
				Name:   "clear",
				Usage:  "forgets the selected island",
				Action: clearIsland,
			},
			{
				Name:                   "times",
				Aliases:                []string{"t"},
				Usage:                  "prints the prayer times of a day",
				Description:            TimesDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 times,
				Flags:                  timesFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "next",
				Aliases:            []string{"n"},
				Usage:              "prints the current and upcoming prayer",
				Description:        NextDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             next,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "counts down to each prayer live",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             watch,
				Flags:              watchFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of namaadhu",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      next,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
