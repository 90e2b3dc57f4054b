package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/namaadhu/namaadhu/cmd/common"
	"github.com/namaadhu/namaadhu/pkg/nmcli"
	"github.com/urfave/cli"
)

func selectIsland(ctx *cli.Context) error {
	arg := ctx.Args().First()
	switch arg {
	case "":
		return common.PrintErrWithCmdHelp(ctx, errors.New("no island id provided"))
	case "help":
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid island id: %s", arg))
	}

	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "select", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	is, err := client.Select(cctx, id)
	if nmcli.IsNotFound(err) {
		fmt.Printf("namaadhu: no island with id %d, see \"namaadhu islands\"\n", id)
		return nil
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, "select", "select_island", err)
		return nil
	}
	fmt.Printf("Selected %s (id %d)\n", is.Name, is.ID)
	return nil
}

func selected(ctx *cli.Context) error {
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "selected", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	is, err := client.Selected(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "selected", "get_selected", err)
		return nil
	}
	if is == nil {
		fmt.Println("namaadhu: no island selected")
		return nil
	}
	fmt.Printf("%s (id %d)\n", is.Name, is.ID)
	return nil
}

func clearIsland(ctx *cli.Context) error {
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear", "new_client", err)
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	if err := client.Clear(cctx); err != nil {
		common.PrintRuntimeErr(ctx, "clear", "clear_selection", err)
		return nil
	}
	fmt.Println("Selection cleared")
	return nil
}
