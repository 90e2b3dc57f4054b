package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/namaadhu/namaadhu/common"
)

func TestMainVersion(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"namaadhu", "version"}
	defer func() { os.Args = oldArgs }()
	oldExit := osExit
	osExit = func(code int) {
		if code != 0 {
			t.Fatalf("unexpected exit code: %d", code)
		}
	}
	defer func() { osExit = oldExit }()
	main()
}

func TestMainNextWithoutDaemon(t *testing.T) {
	t.Setenv(common.ConfigDirEnv, t.TempDir())
	t.Setenv(common.AddrEnv, "127.0.0.1:1")
	t.Setenv(common.RPCSecretEnv, "main-test")

	oldArgs, oldStdout := os.Args, os.Stdout
	defer func() { os.Args, os.Stdout = oldArgs, oldStdout }()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	// No arguments runs next, which reports the unreachable daemon itself.
	os.Args = []string{"namaadhu"}
	code := -1
	oldExit := osExit
	osExit = func(c int) { code = c }
	defer func() { osExit = oldExit }()

	main()
	w.Close()
	os.Stdout = oldStdout
	out, _ := io.ReadAll(r)

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(string(out), "next[get_schedule]") {
		t.Fatalf("expected a next error report, got %q", string(out))
	}
}

func TestRunMainError(t *testing.T) {
	code := runMain([]string{"namaadhu"}, func([]string) error {
		return errors.New("boom")
	})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunMainSuccess(t *testing.T) {
	code := runMain([]string{"namaadhu"}, func([]string) error { return nil })
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}
