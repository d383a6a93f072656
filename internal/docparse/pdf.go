package docparse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// parsePDF извлекает текст страниц, разделяя их пустой строкой.
// Библиотека паникует на битых файлах, поэтому паника превращается в ErrCorruptFile.
func parsePDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrCorruptFile, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(err.Error(), "encrypted") {
			return "", ErrPasswordProtected
		}
		return "", fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrCorruptFile, i, err)
		}
		pages = append(pages, strings.TrimSpace(content))
	}

	return strings.Join(pages, "\n\n"), nil
}
