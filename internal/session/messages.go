package session

import (
	"errors"
	"fmt"

	"github.com/letsssgooo/historyGames/internal/docparse"
	"github.com/letsssgooo/historyGames/internal/extract"
)

const msgNoInput = `Please enter some text to analyze.`

const msgNoAPIKey = `Please set a Gemini API key before uploading a document.`

const msgAnalyzingText = `Analyzing text and creating games...`

const msgAnalyzingFile = `Reading the document and creating games...`

const msgAnalyzingImage = `Reading the image and creating games...`

const msgQuotaError = `API error: %s. Please change the API key or try again later.`

const msgFileError = `Error: %s`

const msgTextError = `AI error: %s`

// displayError переводит ошибку анализа в строку для экрана.
// generic — шаблон для ошибок без особой обработки.
func displayError(err error, generic string) string {
	switch {
	case errors.Is(err, extract.ErrNoAPIKey):
		return msgNoAPIKey
	case extract.IsQuota(err):
		return fmt.Sprintf(msgQuotaError, err)
	case errors.Is(err, docparse.ErrUnsupported):
		return fmt.Sprintf(generic, "unsupported file format, supported: "+docparse.SupportedFormats())
	default:
		return fmt.Sprintf(generic, err)
	}
}
