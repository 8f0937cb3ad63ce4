package emoji

import "sync/atomic"

// emojiMap holds [emoji, fallback] pairs
var emojiMap = map[string][2]string{
	"error":           {"❌", "[ERR]"},
	"warning":         {"⚠️", "[WRN]"},
	"info":            {"ℹ️", "[INF]"},
	"success":         {"✅", "[OK]"},
	"insight":         {"💡", "[INS]"},
	"statistics":      {"📊", "[STATS]"},
	"recommendations": {"📋", "[REC]"},
	"dashboard":       {"🚢", "[DS]"},
	"filter":          {"🔎", "[FLT]"},
	"metric":          {"📈", "[MET]"},
	"chart":           {"📉", "[CHT]"},
	"table":           {"🗂️", "[TBL]"},
	"export":          {"💾", "[EXP]"},
	"details":         {"📖", "[DET]"},
	"missing":         {"🕳️", "[NA]"},
	"correlation":     {"🔗", "[COR]"},
	"group":           {"⚖️", "[GRP]"},
	"help":            {"❓", "[?]"},
	"door":            {"🚪", "[EXIT]"},
	"number":          {"🔢", "[#]"},
	"watch":           {"👀", "[WATCH]"},
	"server":          {"🌐", "[HTTP]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// Icon returns icon unless emoji are disabled, in which case the fallback
// for key is used. Dashboard definitions carry their own icon.
func Icon(icon, key string) string {
	if icon == "" || emojiDisabled.Load() {
		return GetEmoji(key)
	}
	return icon
}
