package gdrive

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var specialChars = regexp.MustCompile(`[^0-9a-zA-Z._\-\s]`)

// SanitizeFileName strips every character outside letters, digits, dot,
// hyphen, underscore and whitespace, then trims surrounding whitespace.
func SanitizeFileName(fileName string) string {
	return strings.TrimSpace(specialChars.ReplaceAllString(fileName, ""))
}

// BuildUploadName prefixes the sanitized file name with the owning document
// type and, when present, the sanitized owning document id, keeping uploads
// inside a single flat Drive folder identifiable.
func BuildUploadName(fileName, entityType, entityID string) string {
	clean := SanitizeFileName(fileName)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)

	if entityType != "" && entityID != "" {
		return fmt.Sprintf("%s_%s_%s%s", entityType, SanitizeFileName(entityID), base, ext)
	}
	if entityType != "" {
		return fmt.Sprintf("%s_%s%s", entityType, base, ext)
	}
	return clean
}

// extensionMimeType looks up a MIME type from the file name's extension,
// stripping parameters like charset. Empty when the extension is unknown.
func extensionMimeType(fileName string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}

// sniffMimeType prefers the extension and sniffs the leading content bytes
// when the extension is unrecognized. The sniffed bytes are stitched back
// onto the returned reader.
func sniffMimeType(fileName string, content io.Reader) (string, io.Reader) {
	if mimeType := extensionMimeType(fileName); mimeType != "" {
		return mimeType, content
	}

	header := make([]byte, 3072)
	n, _ := io.ReadFull(content, header)
	detected := mimetype.Detect(header[:n])
	return detected.String(), io.MultiReader(bytes.NewReader(header[:n]), content)
}
