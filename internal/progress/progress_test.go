package progress

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"auto", ModeAuto, false},
		{"on", ModeOn, false},
		{"off", ModeOff, false},
		{"ON", ModeAuto, true}, // exact-match, no case folding
		{"Off", ModeAuto, true},
		{"", ModeAuto, true},
		{"yes", ModeAuto, true},
	}

	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseChunkSize(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"65536", 65536, false},
		{"1", 1, false},
		{"1kb", 1024, false},
		{"1kib", 1024, false},
		{"16kib", 16 * 1024, false},
		{"8mb", 8 * 1024 * 1024, false},
		{"8mib", 8 * 1024 * 1024, false},
		{"1gb", 1024 * 1024 * 1024, false},
		{"2GB", 2 * 1024 * 1024 * 1024, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"0mb", 0, true},
		{"kb", 0, true},
		{"", 0, true},
		{"12tb", 0, true},
		{"twelve", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseChunkSize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseChunkSize(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseChunkSize(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseChunkSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCopyOffTransfersExactly(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 4096) // 64 KiB, several chunks

	var dst bytes.Buffer
	cfg := Config{ChunkSize: 1024, Total: int64(len(data)), Mode: ModeOff}
	if err := Copy(&dst, bytes.NewReader(data), cfg); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	if !bytes.Equal(dst.Bytes(), data) {
		t.Errorf("Copy corrupted data: got %d bytes, want %d", dst.Len(), len(data))
	}
}

func TestCopyAutoToPipeSkipsIndicator(t *testing.T) {
	// ModeAuto with a pipe destination must behave exactly like ModeOff;
	// if it tried to render, this test would scribble on stderr.
	data := bytes.Repeat([]byte("x"), 10000)

	var dst bytes.Buffer
	cfg := Config{ChunkSize: 512, Total: -1, Mode: ModeAuto, ToPipe: true}
	if err := Copy(&dst, bytes.NewReader(data), cfg); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if dst.Len() != len(data) {
		t.Errorf("Copy transferred %d bytes, want %d", dst.Len(), len(data))
	}
}

type failingWriter struct {
	allow int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.allow <= 0 {
		return 0, errors.New("disk full")
	}
	w.allow -= len(p)
	return len(p), nil
}

func TestCopyPropagatesWriteError(t *testing.T) {
	data := bytes.Repeat([]byte("y"), 8192)

	w := &failingWriter{allow: 1024}
	cfg := Config{ChunkSize: 512, Mode: ModeOff}
	err := Copy(w, bytes.NewReader(data), cfg)
	if err == nil {
		t.Fatal("Copy should propagate the write error")
	}
	if err.Error() != "disk full" {
		t.Errorf("Copy returned %v, want the writer's error", err)
	}
}

func TestCopyDefaultsChunkSize(t *testing.T) {
	data := []byte("small payload")

	var dst bytes.Buffer
	if err := Copy(&dst, bytes.NewReader(data), Config{Mode: ModeOff}); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Error("Copy with zero ChunkSize corrupted data")
	}
}

func TestMeterSpeedsUpWhenUpdatesComeFast(t *testing.T) {
	clock := time.Now()
	var updates []int64

	m := newMeter(func(total int64) { updates = append(updates, total) })
	m.lastUpdate = clock
	m.now = func() time.Time {
		clock = clock.Add(10 * time.Millisecond) // well under 50ms
		return clock
	}

	// First threshold crossing at 8 KiB publishes and doubles the threshold.
	m.count(initialBytesPerUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected 1 update after %d bytes, got %d", initialBytesPerUpdate, len(updates))
	}
	if m.bytesPerUpdate != 2*initialBytesPerUpdate {
		t.Errorf("threshold = %d, want doubled %d", m.bytesPerUpdate, 2*initialBytesPerUpdate)
	}

	// The old threshold no longer triggers an update.
	m.count(initialBytesPerUpdate)
	if len(updates) != 1 {
		t.Errorf("update fired below the doubled threshold")
	}

	m.count(initialBytesPerUpdate)
	if len(updates) != 2 {
		t.Errorf("expected 2 updates after crossing the doubled threshold, got %d", len(updates))
	}
	if updates[1] != 3*initialBytesPerUpdate {
		t.Errorf("published total %d, want %d", updates[1], 3*initialBytesPerUpdate)
	}
}

func TestMeterSlowsDownWhenUpdatesComeSlow(t *testing.T) {
	clock := time.Now()
	updates := 0

	m := newMeter(func(int64) { updates++ })
	m.lastUpdate = clock
	m.now = func() time.Time {
		clock = clock.Add(500 * time.Millisecond) // well over 150ms
		return clock
	}

	m.count(initialBytesPerUpdate)
	if updates != 1 {
		t.Fatalf("expected 1 update, got %d", updates)
	}
	if m.bytesPerUpdate != initialBytesPerUpdate/2 {
		t.Errorf("threshold = %d, want halved %d", m.bytesPerUpdate, initialBytesPerUpdate/2)
	}

	// Halving bottoms out at the floor.
	for i := 0; i < 10; i++ {
		m.count(int(m.bytesPerUpdate))
	}
	if m.bytesPerUpdate != minBytesPerUpdate {
		t.Errorf("threshold = %d, want floor %d", m.bytesPerUpdate, minBytesPerUpdate)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1024 * 1024, "1.00 MiB"},
		{3 * 1024 * 1024 * 1024, "3.00 GiB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.00 TiB"},
	}

	for _, tc := range cases {
		if got := FormatSize(tc.in); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
