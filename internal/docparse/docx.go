package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// parseDocx читает абзацы из word/document.xml.
func parseDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrCorruptFile, err)
		}
		defer rc.Close()

		return docxText(rc)
	}

	return "", fmt.Errorf("%w: %s not found", ErrCorruptFile, docxBody)
}

// docxText собирает текст из элементов w:t, w:tab и w:br.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrCorruptFile, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
