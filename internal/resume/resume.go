// Package resume turns uploaded resume documents into plain text.
package resume

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const failurePrefix = "⚠ Failed to read resume: "

var ErrUnsupportedFormat = errors.New("unsupported file format: only .pdf and .docx are allowed")

// Extract returns the text of a .pdf or .docx resume. Failures are reported
// as a user-facing message in place of the text.
func Extract(filename string, data []byte) string {
	text, err := ExtractText(filename, data)
	if err != nil {
		return failurePrefix + err.Error()
	}
	return text
}

// IsFailure reports whether s is an Extract failure message.
func IsFailure(s string) bool {
	return strings.HasPrefix(s, failurePrefix)
}

// ExtractText is Extract with an explicit error.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		pages = append(pages, pageText(reader.Page(i)))
	}

	return strings.Join(pages, "\n"), nil
}

// pageText yields "" for pages without extractable text.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := paragraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// paragraphs collects the text runs of every <w:p> element in document.xml.
// Paragraphs nested in text boxes are emitted on their own, before the
// paragraph that contains them.
func paragraphs(content string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		result []string
		open   []*strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = len(open) > 0
			case "tab":
				if len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if n := len(open); n > 0 {
					result = append(result, open[n-1].String())
					open = open[:n-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				open[len(open)-1].Write(t)
			}
		}
	}

	return result, nil
}
