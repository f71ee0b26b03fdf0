package core

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileTooLargeError reports an upload over the configured size limit.
type FileTooLargeError struct {
	Size int64
	Max  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds %dMB limit", e.Size, e.Max/(1024*1024))
}

// DecodeRoster turns raw upload bytes into a UTF-8 string. Valid UTF-8
// passes through after BOM stripping. Byte soup that still contains
// multi-byte UTF-8 sequences keeps them and replaces only the broken bytes,
// while purely single-byte content is read as Windows-1252, the usual
// encoding of rosters exported from spreadsheet tools.
func DecodeRoster(data []byte, maxSize int64) (string, error) {
	if int64(len(data)) > maxSize {
		return "", &FileTooLargeError{Size: int64(len(data)), Max: maxSize}
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	if hasMultiByteUTF8(data) {
		return sanitizeUTF8(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Windows-1252 decoding is total; keep the fallback anyway.
		return sanitizeUTF8(data), nil
	}
	return string(decoded), nil
}

// hasMultiByteUTF8 reports whether data contains at least one valid
// multi-byte UTF-8 sequence, which marks the file as mostly-UTF-8 rather
// than a legacy single-byte encoding.
func hasMultiByteUTF8(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if size > 1 && r != utf8.RuneError {
			return true
		}
		data = data[size:]
	}
	return false
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) string {
	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.String()
}
