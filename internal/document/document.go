// Package document turns uploaded resume files into plain text.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies how a file is decoded.
type Format string

const (
	FormatText Format = "text"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
)

var (
	ErrPDFUnsupported       = errors.New("pdf files are not supported, convert the file to text or docx first")
	ErrLegacyDocUnsupported = errors.New("legacy .doc files are not supported, convert the file to docx or text first")
	ErrInvalidEncoding      = errors.New("file is not valid utf-8 text")
)

type decoder func(data []byte) (string, error)

var decoders = map[Format]decoder{
	FormatText: decodeText,
	FormatDOCX: decodeDOCX,
	FormatPDF:  unsupported(ErrPDFUnsupported),
	FormatDOC:  unsupported(ErrLegacyDocUnsupported),
}

// DetectFormat selects a Format from the file extension. Unknown extensions are treated as text.
func DetectFormat(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "docx":
		return FormatDOCX
	case "pdf":
		return FormatPDF
	case "doc":
		return FormatDOC
	default:
		return FormatText
	}
}

// Load reads the file at path and returns its trimmed text content.
func Load(path string) (string, error) {
	if format := DetectFormat(path); format == FormatPDF || format == FormatDOC {
		return decoders[format](nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}

	return LoadBytes(path, data)
}

// LoadBytes decodes data according to the format implied by name.
func LoadBytes(name string, data []byte) (string, error) {
	format := DetectFormat(name)

	text, err := decoders[format](data)
	if err != nil {
		return "", fmt.Errorf("decoding %s file %q: %w", format, filepath.Base(name), err)
	}

	return strings.TrimSpace(text), nil
}

func decodeText(data []byte) (string, error) {
	data = trimBOM(data)
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}

func unsupported(err error) decoder {
	return func([]byte) (string, error) {
		return "", err
	}
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
