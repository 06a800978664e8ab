package whisper

import (
	"path/filepath"
	"strings"
)

// SupportedFormats lists the file extensions the whisper binary consumes
// directly. Anything else would need transcoding, which this tool does not do.
var SupportedFormats = []string{
	"mp3", "wav", "m4a", "ogg", "flac", "aac", "opus", "webm", "mp4",
}

// IsSupported reports whether the file at path has a directly consumable
// extension. The comparison is case-insensitive.
func IsSupported(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// FormatList renders the supported extensions for error messages.
func FormatList() string {
	return strings.Join(SupportedFormats, ", ")
}
