package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
)

// DifficultyPoints maps difficulty to base points. Unknown values score 10.
var DifficultyPoints = map[string]int{
	"easy":   10,
	"medium": 20,
	"hard":   30,
	"expert": 50,
}

func ValidDifficulty(difficulty string) bool {
	_, ok := DifficultyPoints[difficulty]
	return ok
}

func CalculatePoints(difficulty string) int {
	if p, ok := DifficultyPoints[difficulty]; ok {
		return p
	}
	return 10
}

// ValidateAnswer compares a submitted answer with the stored one. Numbers use
// exact float equality after parsing.
func ValidateAnswer(answer, correctAnswer string, answerType models.AnswerType) bool {
	switch answerType {
	case models.AnswerText, models.AnswerBoolean:
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correctAnswer))
	case models.AnswerNumber:
		a, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return false
		}
		b, err := strconv.ParseFloat(strings.TrimSpace(correctAnswer), 64)
		if err != nil {
			return false
		}
		return a == b
	case models.AnswerMultipleChoice:
		return answer == correctAnswer
	default:
		return false
	}
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug lowercases title and collapses every non-alphanumeric run into
// a single hyphen.
func GenerateSlug(title string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// ValidateOptions checks the multiple-choice option list against the answer
// type and the correct answer.
func ValidateOptions(answerType models.AnswerType, options []string, correctAnswer string) error {
	if answerType != models.AnswerMultipleChoice {
		if len(options) > 0 {
			return invalidf("options are only allowed for multiple_choice riddles")
		}
		return nil
	}
	if len(options) < 2 {
		return invalidf("multiple_choice riddles need at least two options")
	}
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if strings.TrimSpace(o) == "" {
			return invalidf("options cannot be empty")
		}
		if seen[o] {
			return invalidf("duplicate option %q", o)
		}
		seen[o] = true
	}
	if !seen[correctAnswer] {
		return invalidf("correct answer must be one of the options")
	}
	return nil
}

// validateAnswerFormat rejects stored answers the comparison could never match.
func validateAnswerFormat(answerType models.AnswerType, correctAnswer string) error {
	if !answerType.Valid() {
		return invalidf("invalid answer type %q", answerType)
	}
	if strings.TrimSpace(correctAnswer) == "" {
		return invalidf("correct answer is required")
	}
	switch answerType {
	case models.AnswerNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(correctAnswer), 64); err != nil {
			return invalidf("correct answer must be a number")
		}
	case models.AnswerBoolean:
		v := strings.ToLower(strings.TrimSpace(correctAnswer))
		if v != "true" && v != "false" {
			return invalidf("correct answer must be true or false")
		}
	}
	return nil
}
