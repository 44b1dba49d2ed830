package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateAnswer(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		correct    string
		answerType models.AnswerType
		want       bool
	}{
		{"text ignores case and padding", "  An Echo ", "an echo", models.AnswerText, true},
		{"text mismatch", "a shadow", "an echo", models.AnswerText, false},
		{"number equal after parsing", "3.0", "3", models.AnswerNumber, true},
		{"number with spaces", " 42 ", "42", models.AnswerNumber, true},
		{"number exact comparison", "0.30000000000000004", "0.3", models.AnswerNumber, false},
		{"number unparsable answer", "three", "3", models.AnswerNumber, false},
		{"number unparsable correct", "3", "three", models.AnswerNumber, false},
		{"boolean case-insensitive", "TRUE", "true", models.AnswerBoolean, true},
		{"boolean mismatch", "false", "true", models.AnswerBoolean, false},
		{"multiple choice exact", "Blue", "Blue", models.AnswerMultipleChoice, true},
		{"multiple choice is case-sensitive", "blue", "Blue", models.AnswerMultipleChoice, false},
		{"multiple choice keeps whitespace", "Blue ", "Blue", models.AnswerMultipleChoice, false},
		{"unknown type", "x", "x", models.AnswerType("essay"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAnswer(tt.answer, tt.correct, tt.answerType))
		})
	}
}

func TestCalculatePoints(t *testing.T) {
	assert.Equal(t, 10, CalculatePoints("easy"))
	assert.Equal(t, 20, CalculatePoints("medium"))
	assert.Equal(t, 30, CalculatePoints("hard"))
	assert.Equal(t, 50, CalculatePoints("expert"))
	assert.Equal(t, 10, CalculatePoints("legendary"))
	assert.Equal(t, 10, CalculatePoints(""))
}

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"The Riddle of the Sphinx": "the-riddle-of-the-sphinx",
		"  What's 2 + 2?  ":        "what-s-2-2",
		"---Already--slugged---":   "already-slugged",
		"Çok güzel":                "ok-g-zel",
		"!!!":                      "",
	}
	for in, want := range tests {
		got := GenerateSlug(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, GenerateSlug(got), "slug must be stable for %q", in)
	}
}

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, ValidateOptions(models.AnswerText, nil, "x"))
	assert.ErrorIs(t, ValidateOptions(models.AnswerText, []string{"a", "b"}, "a"), ErrInvalidInput)

	assert.NoError(t, ValidateOptions(models.AnswerMultipleChoice, []string{"Red", "Blue"}, "Blue"))
	assert.ErrorIs(t, ValidateOptions(models.AnswerMultipleChoice, []string{"Red"}, "Red"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateOptions(models.AnswerMultipleChoice, []string{"Red", "Red"}, "Red"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateOptions(models.AnswerMultipleChoice, []string{"Red", " "}, "Red"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateOptions(models.AnswerMultipleChoice, []string{"Red", "Blue"}, "Green"), ErrInvalidInput)
}

func TestRiddleContentNormalize(t *testing.T) {
	c := riddleContent{
		Title:         "  Fire Riddle ",
		Question:      "What grows when fed but dies when watered?",
		CorrectAnswer: " Fire ",
		Difficulty:    "HARD",
	}
	assert.NoError(t, c.normalize(NewContentFilter()))
	assert.Equal(t, "Fire Riddle", c.Title)
	assert.Equal(t, "Fire", c.CorrectAnswer)
	assert.Equal(t, models.AnswerText, c.AnswerType)
	assert.Equal(t, "general", c.Category)
	assert.Equal(t, "hard", c.Difficulty)
	assert.Nil(t, c.optionsOrNil())

	choice := riddleContent{
		Title:         "Colours",
		Question:      "Which colour is the sky?",
		AnswerType:    models.AnswerMultipleChoice,
		CorrectAnswer: "Blue",
		Options:       []string{" Red", "Blue "},
	}
	assert.NoError(t, choice.normalize(nil))
	assert.Equal(t, []string{"Red", "Blue"}, choice.optionsOrNil())

	bad := []riddleContent{
		{Title: "ab", Question: "q", CorrectAnswer: "a"},
		{Title: "Valid title", Question: "", CorrectAnswer: "a"},
		{Title: "Valid title", Question: "q", CorrectAnswer: "a", Difficulty: "impossible"},
		{Title: "Valid title", Question: "q", AnswerType: models.AnswerNumber, CorrectAnswer: "ten"},
		{Title: "Valid title", Question: "q", AnswerType: models.AnswerBoolean, CorrectAnswer: "maybe"},
		{Title: "Valid title", Question: "visit https://example.com", CorrectAnswer: "a"},
	}
	for _, b := range bad {
		b := b
		assert.ErrorIs(t, b.normalize(NewContentFilter()), ErrInvalidInput, "%+v", b)
	}
}
