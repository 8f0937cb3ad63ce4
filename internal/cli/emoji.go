package cli

import (
	"fmt"
	"io"

	"github.com/yildizm/DataSum/internal/emoji"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// statusf prints one status line prefixed by the emoji for key
func statusf(w io.Writer, key, format string, args ...any) {
	fmt.Fprintf(w, GetEmoji(key)+" "+format+"\n", args...)
}
