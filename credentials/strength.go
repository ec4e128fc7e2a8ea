package credentials

import (
	"unicode"
	"unicode/utf8"
)

const (
	// rulePoints is awarded for each satisfied strength rule
	rulePoints = 20

	// MinimumLength is the length rule threshold, counted in characters
	MinimumLength = 8

	// MinimumChangeScore is the lowest score accepted for a new password
	MinimumChangeScore = 60
)

// StrengthLabel describes a score for live feedback
type StrengthLabel string

const (
	StrengthWeak   StrengthLabel = "Weak"
	StrengthFair   StrengthLabel = "Fair"
	StrengthGood   StrengthLabel = "Good"
	StrengthStrong StrengthLabel = "Strong"
)

// Score rates password strength against five independent rules:
// - At least 8 characters long
// - Contains an uppercase letter
// - Contains a lowercase letter
// - Contains a digit
// - Contains a symbol (anything that is not a letter or digit)
//
// Each satisfied rule adds 20 points, so the result is one of 0, 20, 40, 60, 80 or 100.
func Score(password string) int {
	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
		hasSymbol bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case !unicode.IsLetter(char):
			hasSymbol = true
		}
	}

	score := 0
	for _, ok := range []bool{
		utf8.RuneCountInString(password) >= MinimumLength,
		hasUpper,
		hasLower,
		hasNumber,
		hasSymbol,
	} {
		if ok {
			score += rulePoints
		}
	}
	return score
}

// Strength maps a score onto its feedback label
func Strength(score int) StrengthLabel {
	switch {
	case score < 40:
		return StrengthWeak
	case score < MinimumChangeScore:
		return StrengthFair
	case score < 80:
		return StrengthGood
	default:
		return StrengthStrong
	}
}

// AcceptableForChange reports whether password may be submitted as a new password
func AcceptableForChange(password string) bool {
	return Score(password) >= MinimumChangeScore
}
