package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageRespectsLimit(t *testing.T) {
	text := strings.Repeat("a", 3000) + "\n\n" + strings.Repeat("b", 2000) + "\n" + strings.Repeat("c", 500)

	parts := SplitMessage(text)
	if len(parts) != 2 {
		t.Fatalf("ожидали 2 части, получили %d", len(parts))
	}
	for i, part := range parts {
		if n := len([]rune(part)); n > messageLimit {
			t.Fatalf("часть %d превышает лимит: %d", i, n)
		}
	}
	if parts[0] != strings.Repeat("a", 3000) {
		t.Fatalf("неверная первая часть")
	}
	if parts[1] != strings.Repeat("b", 2000)+"\n"+strings.Repeat("c", 500) {
		t.Fatalf("неверная вторая часть")
	}
}

func TestSplitMessageLongLine(t *testing.T) {
	parts := splitLines("xx\n"+strings.Repeat("я", 25), 10)
	if len(parts) != 4 {
		t.Fatalf("ожидали 4 части, получили %d: %q", len(parts), parts)
	}
	if parts[0] != "xx" || parts[3] != strings.Repeat("я", 5) {
		t.Fatalf("неверная нарезка: %q", parts)
	}
}

func TestSplitMessageShortAndEmpty(t *testing.T) {
	if parts := SplitMessage("  привет  "); len(parts) != 1 || parts[0] != "привет" {
		t.Fatalf("ожидали одну часть: %q", parts)
	}
	if parts := SplitMessage("   \n  "); len(parts) != 0 {
		t.Fatalf("ожидали пустой результат, получили %d", len(parts))
	}
}
