package chat

import "testing"

func TestRemoveUnusedColor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		last byte
		want string
	}{
		{"leading active color", "§8Chest", '8', "Chest"},
		{"other color kept", "§cChest", '8', "§cChest"},
		{"repeated color", "§cRed§c more", '8', "§cRed more"},
		{"overridden before text", "§a§cX", '8', "§cX"},
		{"format dropped by color", "§l§aX", '8', "§aX"},
		{"color after format kept", "§aA§lB§aC", '8', "§aA§lB§aC"},
		{"trailing codes", "Text§a§l", '8', "Text"},
		{"plain text", "Large Chest", '8', "Large Chest"},
		{"dangling sign", "Box§", '8', "Box§"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveUnusedColor(tt.in, tt.last); got != tt.want {
				t.Errorf("RemoveUnusedColor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 32, "short"},
		{"abcdef", 3, "abc"},
		{"ab§c", 3, "ab"},
		{"§a§b§c", 2, "§a"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestJSONToLegacy(t *testing.T) {
	c := NewCodec()
	if got := c.JSONToLegacy(`{"text":"hello"}`); got != "hello" {
		t.Errorf("JSONToLegacy = %q, want hello", got)
	}
	if got := c.JSONToLegacy("not json {"); got != "not json {" {
		t.Errorf("invalid input = %q, want it unchanged", got)
	}
	if got := c.JSONToLegacy(""); got != "" {
		t.Errorf("empty input = %q", got)
	}
}
