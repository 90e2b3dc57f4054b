package cmd

import (
	"fmt"
	"strings"

	"github.com/namaadhu/namaadhu/cmd/common"
	types "github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/pkg/nmcli"
	"github.com/urfave/cli"
)

var (
	timesIsland int
	timesDate   string

	timesFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "island, i",
			Usage:       "island id (default: the selected island)",
			Destination: &timesIsland,
		},
		cli.StringFlag{
			Name:        "date, d",
			Usage:       "day as YYYY-MM-DD (default: today)",
			Destination: &timesDate,
		},
	}
)

func times(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "times", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	res, err := client.Times(cctx, timesIsland, timesDate)
	switch {
	case nmcli.IsNotFound(err):
		fmt.Printf("namaadhu: no island with id %d\n", timesIsland)
		return nil
	case nmcli.IsNoData(err):
		fmt.Println("namaadhu: no prayer times for that day")
		return nil
	case err != nil:
		common.PrintRuntimeErr(ctx, "times", "get_times", err)
		return nil
	}
	fmt.Print(timesTable(res))
	return nil
}

func timesTable(res *types.TimesResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s\n\n", res.Island.Name, res.Date)
	for _, pt := range res.Times {
		fmt.Fprintf(&b, "  %s %s\n", common.Pad(pt.Prayer, 8), pt.Clock)
	}
	return b.String()
}

func next(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "next", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	info, err := client.Schedule(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "next", "get_schedule", err)
		return nil
	}
	fmt.Print(describeSchedule(info))
	return nil
}

func describeSchedule(info *types.ScheduleInfo) string {
	if info.Island == nil {
		return "namaadhu: no island selected, see \"namaadhu islands\"\n"
	}
	if !info.HasPosition() {
		return fmt.Sprintf("%s: no upcoming prayer today\n", info.Island.Name)
	}
	at := info.UpcomingAt.Format("15:04")
	return fmt.Sprintf("%s\n  Current : %s\n  Upcoming: %s at %s (in %s)\n",
		info.Island.Name, info.Current, info.Upcoming, at, info.Remaining)
}
