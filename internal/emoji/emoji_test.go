package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := GetEmoji("filter"); got != "🔎" {
		t.Errorf("GetEmoji(filter) = %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Error("emoji should be disabled")
	}
	if got := GetEmoji("filter"); got != "[FLT]" {
		t.Errorf("fallback = %q, want [FLT]", got)
	}
	if got := GetEmoji("nope"); got != "[?]" {
		t.Errorf("unknown key = %q, want [?]", got)
	}
}

func TestIcon(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := Icon("🚢", "dashboard"); got != "🚢" {
		t.Errorf("Icon = %q", got)
	}
	if got := Icon("", "statistics"); got != "📊" {
		t.Errorf("empty icon should use key, got %q", got)
	}

	SetEmojiDisabled(true)
	if got := Icon("🚢", "dashboard"); got != "[DS]" {
		t.Errorf("disabled icon = %q, want [DS]", got)
	}
}
