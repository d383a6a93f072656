package content

import (
	"fmt"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

// Validate проверяет на корректность контент, пригодный для игр
func Validate(data models.ParsedData) error {
	if len(data.Events) == 0 && len(data.Questions) == 0 && len(data.Characters) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, ErrEmptyContent)
	}

	for i, event := range data.Events {
		if event.Name == "" {
			return fmt.Errorf("%w: missing field name of %d event", ErrInvalidPayload, i)
		}
	}

	for i, question := range data.Questions {
		if question.Question == "" {
			return fmt.Errorf("%w: missing field question of %d question", ErrInvalidPayload, i)
		}

		if len(question.Options) < 2 {
			return fmt.Errorf("%w: amount of options must be at least two in %d question", ErrInvalidPayload, i)
		}

		if question.CorrectAnswerIndex < 0 {
			return fmt.Errorf("%w: index of correct answer must not be negative in %d question", ErrInvalidPayload, i)
		}

		if question.CorrectAnswerIndex >= len(question.Options) {
			return fmt.Errorf("%w: index of correct answer in %d question is out of range", ErrInvalidPayload, i)
		}
	}

	for i, character := range data.Characters {
		if character.Name == "" {
			return fmt.Errorf("%w: missing field name of %d character", ErrInvalidPayload, i)
		}

		if len(character.Hints) == 0 {
			return fmt.Errorf("%w: need at least one hint for %d character", ErrInvalidPayload, i)
		}
	}

	return nil
}
