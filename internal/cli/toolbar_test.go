package cli_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/proxyview/internal/cli"
)

// fakeWindow keeps a history list the way a browser tab does.
type fakeWindow struct {
	history []string
	cursor  int
	reloads int
	calls   []string
}

func (w *fakeWindow) Navigate(input string) (string, error) {
	w.calls = append(w.calls, "navigate "+input)
	w.history = append(w.history[:w.cursor+1], input)
	w.cursor = len(w.history) - 1
	return "https://" + input, nil
}

func (w *fakeWindow) Back() error {
	w.calls = append(w.calls, "back")
	if w.cursor == 0 {
		return errors.New("no previous page")
	}
	w.cursor--
	return nil
}

func (w *fakeWindow) Forward() error {
	w.calls = append(w.calls, "forward")
	if w.cursor == len(w.history)-1 {
		return errors.New("no next page")
	}
	w.cursor++
	return nil
}

func (w *fakeWindow) Reload() error {
	w.calls = append(w.calls, "reload")
	w.reloads++
	return nil
}

func (w *fakeWindow) Title() (string, error) { return "title of " + w.history[w.cursor], nil }

func (w *fakeWindow) Location() (string, error) { return "https://" + w.history[w.cursor] + "/", nil }

func TestRunToolbar_DrivesNavigation(t *testing.T) {
	t.Parallel()
	w := &fakeWindow{history: []string{"start.test"}}
	in := strings.NewReader("a.test\nb.test\nback\nforward\nreload\nwhere\nquit\nnever.test\n")
	var out bytes.Buffer

	if err := cli.RunToolbar(context.Background(), in, &out, w); err != nil {
		t.Fatalf("RunToolbar: %v", err)
	}

	want := []string{"navigate a.test", "navigate b.test", "back", "forward", "reload"}
	if strings.Join(w.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", w.calls, want)
	}
	if w.history[w.cursor] != "b.test" || w.reloads != 1 {
		t.Errorf("unexpected state cursor=%q reloads=%d", w.history[w.cursor], w.reloads)
	}
	if !strings.Contains(out.String(), "https://a.test/  title of a.test") {
		t.Errorf("back did not report the previous page:\n%s", out.String())
	}
}

func TestRunToolbar_ReportsErrorsAndContinues(t *testing.T) {
	t.Parallel()
	w := &fakeWindow{history: []string{"start.test"}}
	var out bytes.Buffer

	if err := cli.RunToolbar(context.Background(), strings.NewReader("back\nc.test\n"), &out, w); err != nil {
		t.Fatalf("RunToolbar: %v", err)
	}
	if !strings.Contains(out.String(), "error: no previous page") {
		t.Errorf("error not reported:\n%s", out.String())
	}
	if w.history[w.cursor] != "c.test" {
		t.Errorf("loop stopped after an error, at %q", w.history[w.cursor])
	}
}

func TestRunToolbar_StopsWhenContextDone(t *testing.T) {
	t.Parallel()
	w := &fakeWindow{history: []string{"start.test"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cli.RunToolbar(ctx, strings.NewReader("a.test\n"), &bytes.Buffer{}, w); err != nil {
		t.Fatalf("RunToolbar: %v", err)
	}
	if len(w.calls) != 0 {
		t.Errorf("commands ran after cancel: %v", w.calls)
	}
}

func TestResolveTargetThenToolbar_ShareInput(t *testing.T) {
	t.Parallel()
	in := bufio.NewReader(strings.NewReader("first.test\nsecond.test\nquit\n"))

	target, err := cli.ResolveTarget(nil, in, &bytes.Buffer{}, true)
	if err != nil || target != "first.test" {
		t.Fatalf("ResolveTarget = %q, %v", target, err)
	}

	w := &fakeWindow{history: []string{target}}
	if err := cli.RunToolbar(context.Background(), in, &bytes.Buffer{}, w); err != nil {
		t.Fatalf("RunToolbar: %v", err)
	}
	if len(w.calls) != 1 || w.calls[0] != "navigate second.test" {
		t.Errorf("toolbar lost buffered input: %v", w.calls)
	}
}
