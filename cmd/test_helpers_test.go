package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/namaadhu/namaadhu/common"
	"github.com/namaadhu/namaadhu/internal/prefs"
	"github.com/namaadhu/namaadhu/internal/server"
	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/internal/tracker"
	"github.com/spf13/afero"
)

const testSecret = "cmd-test-secret"

var mvt = time.FixedZone("MVT", 5*3600)

// captureOutput captures stdout and stderr while f runs.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	outCh := make(chan string)
	errCh := make(chan string)
	go func() {
		var b bytes.Buffer
		io.Copy(&b, rOut)
		outCh <- b.String()
	}()
	go func() {
		var b bytes.Buffer
		io.Copy(&b, rErr)
		errCh <- b.String()
	}()

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	stdout, stderr = <-outCh, <-errCh
	rOut.Close()
	rErr.Close()
	return
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the specified substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertContainsAll checks that output contains all expected substrings.
func assertContainsAll(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		assertContains(t, output, exp)
	}
}

// startTestDaemon serves the fixture timetable at 2025-04-10 13:00 in Malé
// and points the client configuration at it.
func startTestDaemon(t *testing.T) *tracker.Tracker {
	t.Helper()
	fc := clock.NewFake()
	fc.Set(time.Date(2025, time.April, 10, 13, 0, 0, 0, mvt))
	st := store.Fixture()
	p := prefs.New(afero.NewMemMapFs(), "/cfg", nil)
	tr := tracker.New(context.Background(), st, p, &tracker.Options{Clock: fc, Location: mvt})

	ws := server.NewWebServer(nil, tr, st, &server.RPCConfig{Secret: testSecret, Version: "0.0.1"})
	srv := httptest.NewServer(ws.Handler())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		ws.Notifier().StopAll()
		srv.Close()
		tr.Close()
	})

	t.Setenv(common.ConfigDirEnv, t.TempDir())
	t.Setenv(common.AddrEnv, srv.Listener.Addr().String())
	t.Setenv(common.RPCSecretEnv, testSecret)
	return tr
}

// run executes the app with args and returns its stdout.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var err error
	out, _ := captureOutput(func() {
		err = Execute(append([]string{"namaadhu"}, args...), BuildArgs{Version: "1.0.0", BuildType: "test"})
	})
	if err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return out
}

func waitLoaded(t *testing.T, tr *tracker.Tracker) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !tr.Snapshot().Loaded {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the row to load")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// withWatchTimeout makes watch return after d.
func withWatchTimeout(t *testing.T, d time.Duration) {
	t.Helper()
	orig := watchContext
	watchContext = func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), d)
	}
	t.Cleanup(func() { watchContext = orig })
}
