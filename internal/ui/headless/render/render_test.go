package render

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncateDisplayWidth(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{value: "Island", width: 10, want: "Island"},
		{value: "TheIsland", width: 5, want: "TheI…"},
		{value: "TheIsland", width: 1, want: "…"},
		{value: "TheIsland", width: 0, want: ""},
		{value: "恐竜の島", width: 5, want: "恐竜…"},
	}
	for _, tt := range tests {
		if got := TruncateDisplayWidth(tt.value, tt.width); got != tt.want {
			t.Fatalf("TruncateDisplayWidth(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestPadDisplayWidth(t *testing.T) {
	got := PadDisplayWidth("Rex", 6)
	if got != "Rex   " {
		t.Fatalf("PadDisplayWidth() = %q, want %q", got, "Rex   ")
	}
	if w := ansi.StringWidth(PadDisplayWidth("Gigantopithecus", 6)); w != 6 {
		t.Fatalf("PadDisplayWidth() width = %d, want 6", w)
	}
}
