package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/namaadhu/namaadhu/cmd/common"
	types "github.com/namaadhu/namaadhu/common"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

var (
	watchPlain bool

	watchFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "plain, p",
			Usage:       "print a line per prayer change instead of a countdown bar",
			Destination: &watchPlain,
		},
	}
)

// watchContext ends watch on SIGINT or SIGTERM.
var watchContext = func() (context.Context, context.CancelFunc) {
	return daemonContext()
}

type scheduleView interface {
	update(types.ScheduleInfo)
	close()
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	runCtx, stop := watchContext()
	defer stop()

	var view scheduleView
	if watchPlain {
		view = &lineView{out: os.Stdout}
	} else {
		view = newBarView(runCtx, os.Stdout)
	}
	err = client.Watch(runCtx, view.update)
	view.close()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "follow", err)
	}
	return nil
}

// positionKey identifies one wait: the same upcoming prayer of the same
// island and day.
func positionKey(info types.ScheduleInfo) string {
	if info.Island == nil || !info.HasPosition() {
		return ""
	}
	return fmt.Sprintf("%d/%s/%s", info.Island.ID, info.Upcoming, info.UpcomingAt.Format("2006-01-02T15:04"))
}

func positionLine(info types.ScheduleInfo) string {
	switch {
	case info.Island == nil:
		return "no island selected"
	case !info.HasPosition():
		return info.Island.Name + ": no upcoming prayer today"
	}
	return fmt.Sprintf("%s: %s now, %s at %s (in %s)",
		info.Island.Name, info.Current, info.Upcoming, info.UpcomingAt.Format("15:04"), info.Remaining)
}

// lineView prints one line whenever the position changes.
type lineView struct {
	mu      sync.Mutex
	out     io.Writer
	last    string
	printed bool
}

func (v *lineView) update(info types.ScheduleInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := positionKey(info)
	if v.printed && key == v.last {
		return
	}
	v.last = key
	v.printed = true
	fmt.Fprintln(v.out, positionLine(info))
}

func (v *lineView) close() {}

// barView renders a countdown bar for each wait.
type barView struct {
	mu        sync.Mutex
	p         *mpb.Progress
	bar       *mpb.Bar
	key       string
	total     int64
	remaining string
}

func newBarView(ctx context.Context, out io.Writer) *barView {
	return &barView{p: mpb.NewWithContext(ctx, mpb.WithOutput(out))}
}

func (v *barView) remainingText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.remaining
}

func (v *barView) update(info types.ScheduleInfo) {
	key := positionKey(info)

	var done *mpb.Bar
	v.mu.Lock()
	v.remaining = info.Remaining
	bar := v.bar
	if key != v.key {
		done, bar = bar, nil
		v.key = key
		v.total = info.RemainingSeconds
	}
	v.mu.Unlock()

	// The bar's decorators take v.mu, so finish it outside the lock.
	if done != nil {
		done.SetTotal(-1, true)
	}
	if key == "" {
		v.setBar(nil)
		return
	}
	if bar == nil {
		name := fmt.Sprintf("%s at %s", info.Upcoming, info.UpcomingAt.Format("15:04"))
		bar = common.NewCountdownBar(v.p, name, v.total, v.remainingText)
		v.setBar(bar)
	}
	elapsed := v.total - info.RemainingSeconds
	if elapsed < 0 {
		elapsed = 0
	}
	bar.SetCurrent(elapsed)
}

func (v *barView) setBar(b *mpb.Bar) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bar = b
}

func (v *barView) close() {
	v.mu.Lock()
	bar := v.bar
	v.bar = nil
	v.mu.Unlock()
	if bar != nil {
		bar.Abort(false)
	}
	v.p.Wait()
}
