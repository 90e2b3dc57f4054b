package common

import (
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

func newTestContext() *cli.Context {
	app := cli.NewApp()
	app.Name = "namaadhu"
	app.HelpName = "namaadhu"
	app.Version = "test"
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "cmd"}
	return ctx
}

func TestNewCountdownBar(t *testing.T) {
	p := mpb.New(mpb.WithOutput(io.Discard))
	bar := NewCountdownBar(p, "Asr", 120, func() string { return "02:00" })
	if bar == nil {
		t.Fatal("expected a bar")
	}
	bar.SetCurrent(60)
	if bar.Current() != 60 {
		t.Fatalf("Current() = %d, want 60", bar.Current())
	}
	bar.SetTotal(-1, true)
	p.Wait()
}

func TestNewCountdownBarZeroTotal(t *testing.T) {
	p := mpb.New(mpb.WithOutput(io.Discard))
	bar := NewCountdownBar(p, "Fajr", 0, func() string { return "" })
	bar.Abort(true)
	p.Wait()
}

func TestPadAndBeaut(t *testing.T) {
	tests := []struct {
		fn   func(string, int) string
		s    string
		n    int
		want string
	}{
		{Pad, "Asr", 6, "Asr   "},
		{Pad, "Maghrib", 4, "Maghrib"},
		{Pad, "Malé", 6, "Malé  "},
		{Beaut, "hi", 4, " hi "},
		{Beaut, "hi", 5, " hi  "},
		{Beaut, "toolong", 3, "toolong"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.s, tt.n); got != tt.want {
			t.Errorf("(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestPrintRuntimeErr(t *testing.T) {
	PrintRuntimeErr(nil, "cmd", "action", nil)
	PrintRuntimeErr(newTestContext(), "cmd", "action", errors.New("boom"))
}

func TestPrintErrWithHelp(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showAppHelpAndExit
	showAppHelpAndExit = func(*cli.Context, int) { called = true }
	defer func() { showAppHelpAndExit = orig }()

	if err := PrintErrWithHelp(ctx, errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatal("expected help to be called")
	}
}

func TestPrintErrWithHelpFlagHelpRequested(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showAppHelpAndExit
	showAppHelpAndExit = func(*cli.Context, int) { called = true }
	defer func() { showAppHelpAndExit = orig }()

	if err := PrintErrWithHelp(ctx, errors.New("flag: help requested")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatal("expected help to be called")
	}
}

func TestPrintErrWithCmdHelp(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showCommandHelp
	showCommandHelp = func(*cli.Context, string) error {
		called = true
		return errors.New("ignored")
	}
	defer func() { showCommandHelp = orig }()

	if err := PrintErrWithCmdHelp(ctx, errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithCmdHelp: %v", err)
	}
	if !called {
		t.Fatal("expected command help to be called")
	}
}

func TestPrintErrNil(t *testing.T) {
	if err := PrintErrWithCmdHelp(newTestContext(), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestUsageErrorCallback(t *testing.T) {
	ctx := newTestContext()
	var cmdHelp, appHelp bool
	origCmd, origApp := showCommandHelp, showAppHelpAndExit
	showCommandHelp = func(*cli.Context, string) error { cmdHelp = true; return nil }
	showAppHelpAndExit = func(*cli.Context, int) { appHelp = true }
	defer func() { showCommandHelp, showAppHelpAndExit = origCmd, origApp }()

	if err := UsageErrorCallback(ctx, errors.New("oops"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !cmdHelp || appHelp {
		t.Fatalf("expected command help only, got cmd=%v app=%v", cmdHelp, appHelp)
	}

	ctx.Command = cli.Command{}
	if err := UsageErrorCallback(ctx, errors.New("oops"), true); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !appHelp {
		t.Fatal("expected app help at the top level")
	}
}

func TestHelp(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showAppHelpAndExit
	showAppHelpAndExit = func(*cli.Context, int) { called = true }
	defer func() { showAppHelpAndExit = orig }()

	if err := Help(ctx); err != nil {
		t.Fatalf("Help: %v", err)
	}
	if !called {
		t.Fatal("expected help to be called")
	}
}

func TestHelpWithCommandArg(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Parse([]string{"times"})
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "help"}
	var got string
	orig := showCommandHelp
	showCommandHelp = func(_ *cli.Context, name string) error {
		got = name
		return nil
	}
	defer func() { showCommandHelp = orig }()

	if err := Help(ctx); err != nil {
		t.Fatalf("Help: %v", err)
	}
	if got != "times" {
		t.Fatalf("expected help for times, got %q", got)
	}
}

func TestGetVersion(t *testing.T) {
	VersionCmdStr = "namaadhu 1.0.0"
	defer func() { VersionCmdStr = "" }()
	if err := GetVersion(newTestContext()); err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
}
