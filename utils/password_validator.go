package utils

import (
	"fmt"
	"strings"
	"unicode"

	"ad-funnel-gate/config"
)

type passwordRule struct {
	applies     func(config.PasswordRulesConfig) bool
	satisfied   func(string) bool
	requirement string
}

var characterRules = []passwordRule{
	{
		applies:     func(r config.PasswordRulesConfig) bool { return r.RequireUppercase },
		satisfied:   hasRune(unicode.IsUpper),
		requirement: "at least one uppercase letter",
	},
	{
		applies:     func(r config.PasswordRulesConfig) bool { return r.RequireLowercase },
		satisfied:   hasRune(unicode.IsLower),
		requirement: "at least one lowercase letter",
	},
	{
		applies:     func(r config.PasswordRulesConfig) bool { return r.RequireDigit },
		satisfied:   hasRune(unicode.IsDigit),
		requirement: "at least one digit",
	},
	{
		applies: func(r config.PasswordRulesConfig) bool { return r.RequireSpecial },
		satisfied: hasRune(func(c rune) bool {
			return unicode.IsPunct(c) || unicode.IsSymbol(c)
		}),
		requirement: "at least one special character",
	},
}

func hasRune(class func(rune) bool) func(string) bool {
	return func(s string) bool { return strings.IndexFunc(s, class) >= 0 }
}

func lengthRequirement(rules config.PasswordRulesConfig) string {
	if rules.MaxLength > 0 {
		return fmt.Sprintf("%d-%d characters", rules.MinLength, rules.MaxLength)
	}
	return fmt.Sprintf("at least %d characters", rules.MinLength)
}

// ValidatePassword checks a sign-up password against rules and reports every
// unmet requirement at once. Errors wrap ErrWeakPassword.
func ValidatePassword(password string, rules config.PasswordRulesConfig) error {
	var missing []string
	if len(password) < rules.MinLength || (rules.MaxLength > 0 && len(password) > rules.MaxLength) {
		missing = append(missing, lengthRequirement(rules))
	}
	for _, rule := range characterRules {
		if rule.applies(rules) && !rule.satisfied(password) {
			missing = append(missing, rule.requirement)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", ErrWeakPassword, strings.Join(missing, ", "))
	}
	return nil
}

// GetPasswordRequirements describes the configured rules for sign-up forms.
func GetPasswordRequirements(rules config.PasswordRulesConfig) string {
	requirements := []string{lengthRequirement(rules)}
	for _, rule := range characterRules {
		if rule.applies(rules) {
			requirements = append(requirements, rule.requirement)
		}
	}
	return strings.Join(requirements, ", ")
}
