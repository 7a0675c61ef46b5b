// Package assets embeds the default word lists so the server runs without
// any configured files.
package assets

import (
	"embed"
	"io"
)

//go:embed target_words.txt valid_words.txt
var FS embed.FS

// TargetWords opens the embedded target word list.
func TargetWords() (io.ReadCloser, error) {
	return FS.Open("target_words.txt")
}

// ValidWords opens the embedded valid guess list.
func ValidWords() (io.ReadCloser, error) {
	return FS.Open("valid_words.txt")
}
