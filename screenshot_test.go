package tether

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"with spaces", "with_spaces"},
		{"path/to/file", "path_to_file"},
		{"ok-name.v2", "ok-name.v2"},
		{"  padded  ", "padded"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"ünï", "_n_"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	v := NewViewer(800, 600)
	v.Screenshot("a")
	v.Screenshot("b")
	if len(v.screenshotQueue) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(v.screenshotQueue))
	}
	if v.screenshotQueue[0] != "a" || v.screenshotQueue[1] != "b" {
		t.Errorf("queue = %v", v.screenshotQueue)
	}
}
