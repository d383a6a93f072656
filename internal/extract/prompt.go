package extract

import "fmt"

const systemPrompt = `You are an assistant that turns history lessons into educational game content.
Answer with a single JSON object and nothing else. Write all text in the language of the source material.`

const schemaDescription = `The JSON object must have this shape:
{
  "title": "short title of the material",
  "events": [{"name": "event name", "year": 1945, "description": "one or two sentences"}],
  "questions": [{"question": "multiple choice question", "options": ["A", "B", "C", "D"], "correctAnswerIndex": 0}],
  "characters": [{"name": "full name", "hints": ["hardest hint", "harder hint", "easier hint", "easiest hint"], "description": "who this person was"}]
}
Rules:
1. events: historical events with the year they happened. The year is a number.
2. questions: multiple choice questions with exactly 4 options built from the content.
3. characters: historical figures with 4 hints each, ordered from the hardest to the easiest. Do not put the name in the hints.
4. title: a short title for the content.
If something is not present in the material, infer it carefully or leave the list empty.`

const imagePrompt = "Analyze the history material in this image and extract data for the games.\n\n" + schemaDescription

func textPrompt(text string) string {
	return fmt.Sprintf("Analyze the following history teaching material and extract data for the games.\n\n%s\n\nMaterial:\n%s",
		schemaDescription, text)
}
