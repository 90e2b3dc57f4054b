package cmd

import (
	"fmt"
	"strings"

	"github.com/namaadhu/namaadhu/cmd/common"
	types "github.com/namaadhu/namaadhu/common"
	"github.com/urfave/cli"
)

func islands(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "islands", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	atolls, err := client.Atolls(cctx, strings.Join(ctx.Args(), " "))
	if err != nil {
		common.PrintRuntimeErr(ctx, "islands", "get_list", err)
		return nil
	}
	if len(atolls) == 0 {
		fmt.Println("namaadhu: no islands found")
		return nil
	}
	fmt.Print(islandTable(atolls))
	return nil
}

// islandTable prints one section per atoll.
func islandTable(atolls []types.AtollInfo) string {
	var b strings.Builder
	for i, a := range atolls {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d)\n", a.Atoll, len(a.Islands))
		b.WriteString("|  Id  |" + common.Beaut("Island", 22) + "|\n")
		b.WriteString("|------|----------------------|\n")
		for _, is := range a.Islands {
			fmt.Fprintf(&b, "| %4d | %s |\n", is.ID, common.Pad(is.Island, 20))
		}
	}
	return b.String()
}
