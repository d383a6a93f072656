package docparse

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupported       = errors.New("unsupported file format")
	ErrPasswordProtected = errors.New("file is password protected")
	ErrCorruptFile       = errors.New("file is corrupt or unreadable")
	ErrEmptyDocument     = errors.New("document contains no text")
)

// FileType — вид загруженного файла.
type FileType string

const (
	TypeText    FileType = "text"
	TypePDF     FileType = "pdf"
	TypeDocx    FileType = "docx"
	TypeImage   FileType = "image"
	TypeUnknown FileType = "unknown"
)

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDoc  = "application/msword"
)

var (
	textExtensions  = []string{"txt", "md", "json"}
	docExtensions   = []string{"docx", "doc"}
	imageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}
)

// ParsedFile — результат разбора файла: текст либо изображение в base64.
type ParsedFile struct {
	Type          FileType `json:"type"`
	FileName      string   `json:"fileName"`
	Text          string   `json:"text,omitempty"`
	ImageBase64   string   `json:"imageBase64,omitempty"`
	ImageMimeType string   `json:"imageMimeType,omitempty"`
}

// SupportedFormats возвращает список поддерживаемых расширений.
func SupportedFormats() string {
	return ".txt, .md, .json, .pdf, .docx, .doc, .jpg, .jpeg, .png, .gif, .webp, .bmp"
}

// Detect определяет вид файла по расширению, затем по MIME-типу.
// Если ни то ни другое не помогло, тип определяется по содержимому.
func Detect(fileName, mimeType string, data []byte) FileType {
	if t := detectByName(fileName, mimeType); t != TypeUnknown {
		return t
	}
	if len(data) == 0 {
		return TypeUnknown
	}

	sniffed := mimetype.Detect(data)
	return detectByName("", sniffed.String())
}

func detectByName(fileName, mimeType string) FileType {
	ext := extension(fileName)
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case slices.Contains(textExtensions, ext) || strings.HasPrefix(mimeType, "text/"):
		return TypeText
	case ext == "pdf" || mimeType == mimePDF:
		return TypePDF
	case slices.Contains(docExtensions, ext) || mimeType == mimeDocx || mimeType == mimeDoc:
		return TypeDocx
	case slices.Contains(imageExtensions, ext) || strings.HasPrefix(mimeType, "image/"):
		return TypeImage
	default:
		return TypeUnknown
	}
}

// Parse разбирает файл в текст или изображение.
func Parse(fileName, mimeType string, data []byte) (ParsedFile, error) {
	out := ParsedFile{FileName: fileName, Type: Detect(fileName, mimeType, data)}

	var (
		text string
		err  error
	)

	switch out.Type {
	case TypeText:
		text = strings.ToValidUTF8(strings.TrimPrefix(string(data), "\ufeff"), string(utf8.RuneError))
	case TypePDF:
		text, err = parsePDF(data)
	case TypeDocx:
		text, err = parseDocx(data)
		if errors.Is(err, ErrCorruptFile) && extension(fileName) == "doc" {
			err = fmt.Errorf("%w: legacy .doc files are not supported, save as .docx", ErrUnsupported)
		}
	case TypeImage:
		if len(data) == 0 {
			return ParsedFile{}, fmt.Errorf("image %s: %w", fileName, ErrEmptyDocument)
		}
		out.ImageBase64 = base64.StdEncoding.EncodeToString(data)
		out.ImageMimeType = imageMime(mimeType, data)
		return out, nil
	default:
		return ParsedFile{}, fmt.Errorf("%s: %w", fileName, ErrUnsupported)
	}

	if err != nil {
		return ParsedFile{}, fmt.Errorf("%s: %w", fileName, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedFile{}, fmt.Errorf("%s: %w", fileName, ErrEmptyDocument)
	}
	out.Text = text

	return out, nil
}

func imageMime(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return mimetype.Detect(data).String()
}

func extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}
