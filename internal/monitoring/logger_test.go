package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerAndMute(t *testing.T) {
	prev := Logf
	t.Cleanup(func() { Logf = prev })

	var got []string
	SetLogger(func(format string, v ...any) { got = append(got, fmt.Sprintf(format, v...)) })
	Logf("band %d", 2)

	restore := Mute()
	Logf("dropped")
	restore()
	Logf("back")

	want := []string{"band 2", "back"}
	if len(got) != len(want) {
		t.Fatalf("logged %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("logged %q, want %q", got, want)
		}
	}
}
