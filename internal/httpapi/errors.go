package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/historyGames/internal/content"
	"github.com/letsssgooo/historyGames/internal/docparse"
	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/extract"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/session"
)

var (
	errBadBody         = fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	errFileRequired    = fiber.NewError(fiber.StatusBadRequest, `multipart field "file" is required`)
	errHistoryNotFound = fiber.NewError(fiber.StatusNotFound, "saved game not found")
)

// badRequest — ошибки ввода и недопустимые ходы.
var badRequest = []error{
	session.ErrNoInput,
	session.ErrUnknownGame,
	session.ErrInvalidImage,
	models.ErrInvalidConfig,
	extract.ErrNoAPIKey,
	extract.ErrNoInput,
	docparse.ErrUnsupported,
	docparse.ErrPasswordProtected,
	docparse.ErrCorruptFile,
	docparse.ErrEmptyDocument,
	games.ErrNoContent,
	games.ErrNoPuzzleImage,
	games.ErrGameFinished,
	games.ErrUnknownItem,
	games.ErrUnknownAction,
	games.ErrInvalidSlot,
	games.ErrSlotOccupied,
	games.ErrSlotEmpty,
	games.ErrPoolNotEmpty,
	games.ErrAlreadyChecked,
	games.ErrAlreadyAnswered,
	games.ErrInvalidOption,
	games.ErrAlreadyGuessed,
	games.ErrNotGuessedYet,
	games.ErrNoMoreHints,
	games.ErrIllegalMove,
}

// conflict — операции, недопустимые в текущем состоянии сессии.
var conflict = []error{
	session.ErrWrongScreen,
	session.ErrBusy,
	session.ErrNoData,
	session.ErrAnalysisCancelled,
}

// badGateway — сбои модели извлечения.
var badGateway = []error{
	extract.ErrAllModelsFailed,
	extract.ErrInvalidCredential,
	extract.ErrEmptyResponse,
	content.ErrInvalidPayload,
}

func statusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrSavedGameNotFound),
		errors.Is(err, session.ErrNoGame):
		return fiber.StatusNotFound
	case extract.IsQuota(err):
		return fiber.StatusTooManyRequests
	case isAny(err, conflict):
		return fiber.StatusConflict
	case isAny(err, badGateway):
		return fiber.StatusBadGateway
	case isAny(err, badRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError превращает ошибку обработчика в {"error": msg}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
