package gitx

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/aiscrub/aiscrub/internal/errors"
)

func collectEvents(t *testing.T, input string) []PathEvent {
	t.Helper()
	var events []PathEvent
	err := parseHistoryStream(context.Background(), strings.NewReader(input), func(ev PathEvent) error {
		events = append(events, ev)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("parseHistoryStream() error = %v", err)
	}
	return events
}

func TestParseHistoryStreamBasic(t *testing.T) {
	input := "\x01aaa111\x1f1700000000\x1fadd config\n" +
		"\n" +
		"A\tCLAUDE.md\n" +
		"A\tdocs/résumé.md\n" +
		"\x01bbb222\x1f1700000100\x1fmove things\n" +
		"\n" +
		"R100\ta.txt\tb.txt\n" +
		"D\tCLAUDE.md\n"

	events := collectEvents(t, input)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}

	first := events[0]
	if first.Commit.ID != "aaa111" || first.Status != 'A' || first.Path != "CLAUDE.md" {
		t.Errorf("unexpected first event: %+v", first)
	}
	if got := first.Commit.Time; !got.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected commit time 1700000000, got %v", got)
	}
	if first.Commit.Subject != "add config" {
		t.Errorf("expected subject %q, got %q", "add config", first.Commit.Subject)
	}

	if events[1].Path != "docs/résumé.md" {
		t.Errorf("non-ASCII path mangled: %q", events[1].Path)
	}

	ren := events[2]
	if ren.Status != 'R' || ren.OldPath != "a.txt" || ren.Path != "b.txt" {
		t.Errorf("unexpected rename event: %+v", ren)
	}
	if ren.Commit.ID != "bbb222" {
		t.Errorf("rename attributed to wrong commit: %q", ren.Commit.ID)
	}

	if events[3].Status != 'D' || events[3].Path != "CLAUDE.md" {
		t.Errorf("unexpected delete event: %+v", events[3])
	}
}

func TestParseHistoryStreamSubjectMayContainTabs(t *testing.T) {
	input := "\x01ccc333\x1f1700000000\x1fsubject\twith\ttabs\n" +
		"A\tfile.txt\n"

	events := collectEvents(t, input)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Commit.Subject != "subject\twith\ttabs" {
		t.Errorf("subject mangled: %q", events[0].Commit.Subject)
	}
}

func TestParseHistoryStreamIgnoresFiller(t *testing.T) {
	input := "noise before any commit\n" +
		"M\torphan-status-line.txt\n" +
		"\x01ddd444\x1f1700000000\x1fok\n" +
		"\n\n" +
		"line without tab\n" +
		"A\treal.txt\n"

	events := collectEvents(t, input)
	if len(events) != 1 || events[0].Path != "real.txt" {
		t.Fatalf("expected only real.txt, got %+v", events)
	}
}

func TestParseHistoryStreamMalformedHeader(t *testing.T) {
	input := "\x01onlyhash\n"
	err := parseHistoryStream(context.Background(), strings.NewReader(input), func(PathEvent) error { return nil }, nil)
	if !errors.IsKind(err, errors.KindGitCommand) {
		t.Fatalf("expected git_command error, got %v", err)
	}
}

func TestParseHistoryStreamStopsOnCallbackError(t *testing.T) {
	input := "\x01eee555\x1f1700000000\x1ftwo files\n" +
		"A\tfirst.txt\n" +
		"A\tsecond.txt\n"

	sentinel := stderrors.New("stop here")
	calls := 0
	err := parseHistoryStream(context.Background(), strings.NewReader(input), func(PathEvent) error {
		calls++
		return sentinel
	}, nil)
	if !stderrors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after erroring", calls)
	}
}

func TestParseHistoryStreamHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "\x01fff666\x1f1700000000\x1fnever seen\nA\tx.txt\n"
	err := parseHistoryStream(ctx, strings.NewReader(input), func(PathEvent) error {
		t.Fatal("callback should not run after cancellation")
		return nil
	}, nil)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseHistoryStreamReportsProgress(t *testing.T) {
	input := "\x01a1\x1f1700000000\x1fone\nA\ta.txt\n" +
		"\x01b2\x1f1700000100\x1ftwo\nA\tb.txt\n" +
		"\x01c3\x1f1700000200\x1fthree\nA\tc.txt\n"

	var counts []int
	err := parseHistoryStream(context.Background(), strings.NewReader(input), func(PathEvent) error { return nil }, func(n int) {
		counts = append(counts, n)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 3 || counts[2] != 3 {
		t.Errorf("expected progress 1,2,3, got %v", counts)
	}
}
