package services

import (
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
)

// riddleContent is the question/answer payload shared by riddles and riddle
// requests.
type riddleContent struct {
	Title         string
	Question      string
	AnswerType    models.AnswerType
	CorrectAnswer string
	Options       []string
	Category      string
	Difficulty    string
}

// normalize trims and defaults every field, then validates the result.
func (c *riddleContent) normalize(filter *ContentFilter) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Question = strings.TrimSpace(c.Question)
	c.CorrectAnswer = strings.TrimSpace(c.CorrectAnswer)
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	c.Difficulty = strings.ToLower(strings.TrimSpace(c.Difficulty))
	if c.AnswerType == "" {
		c.AnswerType = models.AnswerText
	}
	if c.Category == "" {
		c.Category = "general"
	}
	if c.Difficulty == "" {
		c.Difficulty = "easy"
	}
	options := make([]string, 0, len(c.Options))
	for _, o := range c.Options {
		options = append(options, strings.TrimSpace(o))
	}
	c.Options = options

	if n := utf8.RuneCountInString(c.Title); n < 3 || n > 200 {
		return invalidf("title must be 3-200 characters")
	}
	if GenerateSlug(c.Title) == "" {
		return invalidf("title must contain letters or digits")
	}
	if n := utf8.RuneCountInString(c.Question); n == 0 || n > 5000 {
		return invalidf("question must be 1-5000 characters")
	}
	if utf8.RuneCountInString(c.Category) > 50 {
		return invalidf("category must be at most 50 characters")
	}
	if !ValidDifficulty(c.Difficulty) {
		return invalidf("difficulty must be one of easy, medium, hard, expert")
	}
	if err := validateAnswerFormat(c.AnswerType, c.CorrectAnswer); err != nil {
		return err
	}
	if err := ValidateOptions(c.AnswerType, c.Options, c.CorrectAnswer); err != nil {
		return err
	}
	return filter.Screen(map[string]string{"title": c.Title, "question": c.Question})
}

// optionsOrNil keeps non-choice riddles from storing an empty jsonb array.
func (c *riddleContent) optionsOrNil() []string {
	if len(c.Options) == 0 {
		return nil
	}
	return c.Options
}
