package app

import (
	"strconv"
	"strings"

	"this-or-that/internal/domain"
)

func validateNewGame(in CreateGameInput) (domain.Game, error) {
	title := strings.TrimSpace(in.Title)
	slug := strings.TrimSpace(in.Slug)
	if title == "" || slug == "" {
		return domain.Game{}, domain.Invalid("title", "Missing required fields: title, slug")
	}
	if !domain.ValidSlug(slug) {
		return domain.Game{}, domain.Invalid("slug", "Slug may only contain letters, digits, '-' and '_'")
	}

	labelA := strings.TrimSpace(in.OptionALabel)
	labelB := strings.TrimSpace(in.OptionBLabel)
	if labelA == "" || labelB == "" {
		return domain.Game{}, domain.Invalid("option_a_label", "Missing required fields: option_a_label, option_b_label")
	}

	answer, err := validateTiebreaker(in.TiebreakerEnabled, in.TiebreakerPrompt, in.TiebreakerAnswer)
	if err != nil {
		return domain.Game{}, err
	}

	theme := strings.TrimSpace(in.Theme)
	if theme == "" {
		theme = domain.ThemeDefault
	}
	if !domain.ValidTheme(theme) {
		return domain.Game{}, domain.Invalid("theme", "Unknown theme %q", theme)
	}

	open := true
	if in.IsOpen != nil {
		open = *in.IsOpen
	}

	return domain.Game{
		Slug:              slug,
		Title:             title,
		IsOpen:            open,
		OptionALabel:      labelA,
		OptionBLabel:      labelB,
		OptionAEmoji:      strings.TrimSpace(in.OptionAEmoji),
		OptionBEmoji:      strings.TrimSpace(in.OptionBEmoji),
		TiebreakerEnabled: in.TiebreakerEnabled,
		TiebreakerPrompt:  strings.TrimSpace(in.TiebreakerPrompt),
		TiebreakerAnswer:  answer,
		Theme:             theme,
	}, nil
}

// validateTiebreaker checks the tiebreaker fields and returns the parsed answer.
// A disabled tiebreaker keeps a parseable answer and drops anything else.
func validateTiebreaker(enabled bool, prompt, rawAnswer string) (*float64, error) {
	trimmed := strings.TrimSpace(rawAnswer)
	if !enabled {
		if n, ok := domain.ParseNumber(trimmed); ok {
			return &n, nil
		}
		return nil, nil
	}
	if trimmed == "" {
		return nil, domain.Invalid("tiebreaker_answer", "Tiebreaker answer is required when tiebreaker_enabled is true")
	}
	n, ok := domain.ParseNumber(trimmed)
	if !ok {
		return nil, domain.Invalid("tiebreaker_answer", "Tiebreaker answer must be a number")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.Invalid("tiebreaker_prompt", "Tiebreaker prompt is required when tiebreaker_enabled is true")
	}
	return &n, nil
}

func validateQuestion(in QuestionInput) (string, domain.Choice, error) {
	prompt := ""
	if in.Prompt != nil {
		prompt = strings.TrimSpace(*in.Prompt)
	}
	if prompt == "" {
		return "", "", domain.Invalid("prompt", "Missing prompt")
	}
	correct := domain.Choice("")
	if in.CorrectAnswer != nil {
		correct = domain.Choice(*in.CorrectAnswer)
	}
	if !correct.Valid() {
		return "", "", domain.Invalid("correct_answer", "Invalid correct_answer, must be %q or %q", domain.ChoiceMom, domain.ChoiceDad)
	}
	return prompt, correct, nil
}

func validateAnswerValue(key, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if key == domain.TiebreakerKey {
		if trimmed == "" {
			return "", domain.Invalid("tiebreaker", "Please enter your tiebreaker answer")
		}
		if !domain.ValidGuess(trimmed) {
			return "", domain.Invalid("tiebreaker", "Tiebreaker answer must be a number")
		}
		return trimmed, nil
	}
	if !domain.ValidOption(trimmed) {
		return "", domain.Invalid("answer", "Please select an answer")
	}
	return trimmed, nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
