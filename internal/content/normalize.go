package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

var (
	ErrInvalidPayload = errors.New("invalid content payload")
	ErrEmptyContent   = errors.New("content has no events, questions or characters")
)

// rawData повторяет ParsedData, но год принимает в любом виде.
type rawData struct {
	Title      string                 `json:"title"`
	Events     []rawEvent             `json:"events"`
	Questions  []models.QuizQuestion  `json:"questions"`
	Characters []models.CharacterInfo `json:"characters"`
}

type rawEvent struct {
	Name        string          `json:"name"`
	Year        json.RawMessage `json:"year"`
	Description string          `json:"description"`
}

var leadingYear = regexp.MustCompile(`-?\d+`)

// Normalize разбирает ответ модели, присваивает идентификаторы и проверяет контент.
// Ответ может быть обёрнут в markdown-блок или окружён текстом.
func Normalize(raw []byte) (models.ParsedData, error) {
	body, err := extractObject(raw)
	if err != nil {
		return models.ParsedData{}, err
	}

	var in rawData
	if err := json.Unmarshal(body, &in); err != nil {
		return models.ParsedData{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	out := models.ParsedData{
		Title:      strings.TrimSpace(in.Title),
		Events:     make([]models.HistoricalEvent, 0, len(in.Events)),
		Questions:  make([]models.QuizQuestion, 0, len(in.Questions)),
		Characters: make([]models.CharacterInfo, 0, len(in.Characters)),
	}

	for i, e := range in.Events {
		out.Events = append(out.Events, models.HistoricalEvent{
			ID:          fmt.Sprintf("evt-%d", i),
			Name:        strings.TrimSpace(e.Name),
			Year:        ParseYear(e.Year),
			Description: strings.TrimSpace(e.Description),
		})
	}

	for i, q := range in.Questions {
		q.ID = fmt.Sprintf("quiz-%d", i)
		q.Question = strings.TrimSpace(q.Question)
		out.Questions = append(out.Questions, q)
	}

	for i, c := range in.Characters {
		c.ID = fmt.Sprintf("char-%d", i)
		c.Name = strings.TrimSpace(c.Name)
		c.Hints = nonBlank(c.Hints)
		c.Description = strings.TrimSpace(c.Description)
		out.Characters = append(out.Characters, c)
	}

	if err := Validate(out); err != nil {
		return models.ParsedData{}, err
	}

	return out, nil
}

// ParseYear приводит год из числа или строки к int. Неразборчивый год даёт 0.
func ParseYear(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return 0
		}
		return int(num)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}

	match := leadingYear.FindString(s)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}

	return year
}

func extractObject(raw []byte) ([]byte, error) {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no json object found", ErrInvalidPayload)
	}
	return raw[start : end+1], nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
