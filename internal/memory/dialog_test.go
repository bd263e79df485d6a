package memory

import (
	"fmt"
	"strings"
	"testing"
)

func TestDialogBuffer_FIFOCap(t *testing.T) {
	b := NewDialogBuffer()

	for i := 1; i <= 20; i++ {
		b.Append("u1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	tail := b.Tail("u1", 100)
	if len(tail) != 15 {
		t.Fatalf("got %d turns, want 15", len(tail))
	}
	// Oldest retained turn is q6, newest q20, original relative order.
	for i, turn := range tail {
		want := fmt.Sprintf("q%d", i+6)
		if turn.Query != want {
			t.Errorf("turn %d: query = %q, want %q", i, turn.Query, want)
		}
	}
}

func TestDialogBuffer_TailLimit(t *testing.T) {
	b := NewDialogBuffer()
	b.Append("u1", "q1", "a1")
	b.Append("u1", "q2", "a2")
	b.Append("u1", "q3", "a3")

	tail := b.Tail("u1", 2)
	if len(tail) != 2 {
		t.Fatalf("got %d turns, want 2", len(tail))
	}
	if tail[0].Query != "q2" || tail[1].Query != "q3" {
		t.Errorf("tail = %+v, want last two turns", tail)
	}
}

func TestDialogBuffer_ResponseTruncated(t *testing.T) {
	b := NewDialogBuffer()
	// Cyrillic response: rune-safe truncation matters here.
	long := strings.Repeat("ответ ", 100)
	b.Append("u1", "q", long)

	tail := b.Tail("u1", 1)
	got := []rune(tail[0].Response)
	if len(got) != 200 {
		t.Errorf("response length = %d runes, want 200", len(got))
	}
	if !strings.HasPrefix(long, tail[0].Response) {
		t.Error("truncated response is not a prefix of the original")
	}
}

func TestDialogBuffer_UnknownUserEmpty(t *testing.T) {
	b := NewDialogBuffer()
	if tail := b.Tail("nobody", 3); tail != nil {
		t.Errorf("got %v, want nil", tail)
	}
}

func TestDialogBuffer_UsersIsolated(t *testing.T) {
	b := NewDialogBuffer()
	b.Append("u1", "q1", "a1")
	b.Append("u2", "q2", "a2")

	if got := b.Tail("u1", 5); len(got) != 1 || got[0].Query != "q1" {
		t.Errorf("u1 tail = %+v", got)
	}
	if b.ActiveUsers() != 2 {
		t.Errorf("ActiveUsers = %d, want 2", b.ActiveUsers())
	}
}
