package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var errEmptyDocument = errors.New("docx document has no content")

func decodeDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()
	if strings.TrimSpace(content) == "" {
		return "", errEmptyDocument
	}

	return documentText(content)
}

// documentText collects w:t runs from WordprocessingML, one line per paragraph.
// Tabs and breaks count only inside runs; w:tab under w:tabs is a tab stop definition.
func documentText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		out       strings.Builder
		paragraph strings.Builder
		inText    bool
		runDepth  int
	)

	flush := func() {
		line := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if line == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(line)
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					paragraph.WriteString("\t")
				}
			case "br":
				if runDepth > 0 {
					paragraph.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(el)
			}
		}
	}
	flush()

	return out.String(), nil
}
