package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nucleus-console/pkg/engine"
)

func newTestWriter(t *testing.T, now time.Time) *Writer {
	t.Helper()
	w, err := NewWriter(Options{BaseDir: t.TempDir(), Timezone: time.UTC}, nil)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.now = func() time.Time { return now }
	return w
}

func TestDailyPath(t *testing.T) {
	w := newTestWriter(t, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))
	p, err := w.DailyPath("Gustavw", time.Time{})
	if err != nil {
		t.Fatalf("daily path: %v", err)
	}
	want := filepath.Join(w.opts.BaseDir, "gustavw", "2025-06-01.log")
	if p != want {
		t.Fatalf("expected %q, got %q", want, p)
	}
	if _, err := w.DailyPath("  ", time.Time{}); err == nil {
		t.Fatalf("expected error for empty operator")
	}
}

func TestObserverRecordsLines(t *testing.T) {
	w := newTestWriter(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	log := engine.NewOutputLog()
	log.SetClock(func() time.Time { return time.Date(2025, 6, 1, 8, 0, 5, 0, time.UTC) })
	op := "admin"
	log.Observe(w.Observer(func() string { return op }))

	log.Command("[admin@nucleus ~]$ ls")
	log.Clear()
	op = "stephenc"
	log.Error("CRITICAL ERROR: boom\n")

	p, _ := w.DailyPath("admin", time.Time{})
	lines, err := Tail(p, 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 1 || lines[0] != "[08:00:05] COMMAND [admin@nucleus ~]$ ls" {
		t.Fatalf("unexpected admin transcript %#v", lines)
	}

	p, _ = w.DailyPath("stephenc", time.Time{})
	lines, _ = Tail(p, 10)
	if len(lines) != 1 || lines[0] != "[08:00:05] ERROR CRITICAL ERROR: boom" {
		t.Fatalf("unexpected stephenc transcript %#v", lines)
	}
}

func TestListNewestFirstAndTail(t *testing.T) {
	w := newTestWriter(t, time.Now())
	dir, _ := w.Dir("admin")
	if got, err := w.List("admin"); err != nil || len(got) != 0 {
		t.Fatalf("expected empty list before writes, got %#v %v", got, err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, day := range []string{"2025-01-02", "2025-03-01", "2024-12-31"} {
		body := strings.Repeat("x\n", 3) + day + "\n"
		if err := os.WriteFile(filepath.Join(dir, day+DefaultExt), []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600)

	files, err := w.List("admin")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 3 || filepath.Base(files[0]) != "2025-03-01.log" || filepath.Base(files[2]) != "2024-12-31.log" {
		t.Fatalf("unexpected order %#v", files)
	}

	lines, err := Tail(files[0], 2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 2 || lines[1] != "2025-03-01" {
		t.Fatalf("unexpected tail %#v", lines)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"admin":       "admin",
		"Ops Team/1":  "ops_team_1",
		"..":          "_",
		"a.b-c_d":     "a.b-c_d",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
