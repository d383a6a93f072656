package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Valid(t *testing.T) {
	raw := []byte("Вот результат:\n```json\n" + `{
		"title": "  Lịch sử Việt Nam  ",
		"events": [
			{"id": "x", "name": "Cách mạng tháng Tám", "year": 1945, "description": "Giành chính quyền"},
			{"name": "Điện Biên Phủ", "year": "1954", "description": "Chiến thắng"}
		],
		"questions": [
			{"question": "Năm nào?", "options": ["1945", "1954", "1975", "1986"], "correctAnswerIndex": 1}
		],
		"characters": [
			{"name": "Hồ Chí Minh", "hints": ["Gợi ý 1", " ", "Gợi ý 2"], "description": "Chủ tịch"}
		]
	}` + "\n```")

	data, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "Lịch sử Việt Nam", data.Title)
	require.Len(t, data.Events, 2)
	assert.Equal(t, "evt-0", data.Events[0].ID)
	assert.Equal(t, "evt-1", data.Events[1].ID)
	assert.Equal(t, 1945, data.Events[0].Year)
	assert.Equal(t, 1954, data.Events[1].Year)

	require.Len(t, data.Questions, 1)
	assert.Equal(t, "quiz-0", data.Questions[0].ID)
	assert.Equal(t, 1, data.Questions[0].CorrectAnswerIndex)

	require.Len(t, data.Characters, 1)
	assert.Equal(t, "char-0", data.Characters[0].ID)
	assert.Equal(t, []string{"Gợi ý 1", "Gợi ý 2"}, data.Characters[0].Hints)
}

func TestNormalize_InvalidJSON(t *testing.T) {
	_, err := Normalize([]byte(`{invalid json}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Normalize([]byte(`no object here`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_EmptyContent(t *testing.T) {
	_, err := Normalize([]byte(`{"title": "Nothing", "events": [], "questions": [], "characters": []}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestNormalize_RejectsBadQuestions(t *testing.T) {
	cases := map[string]string{
		"one option":     `{"questions": [{"question": "Q", "options": ["A"], "correctAnswerIndex": 0}]}`,
		"index too big":  `{"questions": [{"question": "Q", "options": ["A", "B"], "correctAnswerIndex": 2}]}`,
		"negative index": `{"questions": [{"question": "Q", "options": ["A", "B"], "correctAnswerIndex": -1}]}`,
		"empty text":     `{"questions": [{"question": "  ", "options": ["A", "B"], "correctAnswerIndex": 0}]}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize([]byte(payload))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestNormalize_RejectsBadCharacters(t *testing.T) {
	_, err := Normalize([]byte(`{"characters": [{"name": "", "hints": ["a"]}]}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Normalize([]byte(`{"characters": [{"name": "Trần Hưng Đạo", "hints": ["", "  "]}]}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`1945`, 1945},
		{`1945.0`, 1945},
		{`"1945"`, 1945},
		{`"năm 1945"`, 1945},
		{`"-258"`, -258},
		{`"unknown"`, 0},
		{`null`, 0},
		{``, 0},
		{`true`, 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseYear(json.RawMessage(tc.raw)), "raw=%s", tc.raw)
	}
}
