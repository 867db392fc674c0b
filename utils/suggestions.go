package utils

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateCodeSuggestions offers free alternatives when a custom code is taken
// It tries multiple strategies:
// 1. Numeric suffixes: my-link-2, my-link-3, my-link-4
// 2. Random suffixes: my-link-x7, my-link-x9
// 3. A timestamp suffix
// Returns only free codes, up to maxSuggestions
func GenerateCodeSuggestions(ctx context.Context, checker CodeChecker, baseCode string, maxSuggestions int) []string {
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}

	suggestions := make([]string, 0, maxSuggestions)
	base := strings.ToLower(baseCode)

	for i := 2; i <= maxSuggestions+5 && len(suggestions) < maxSuggestions; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if isCodeFree(ctx, checker, candidate) {
			suggestions = append(suggestions, candidate)
		}
	}

	for attempt := 0; attempt < 10 && len(suggestions) < maxSuggestions; attempt++ {
		candidate := fmt.Sprintf("%s-x%d", base, rng.Intn(90)+10)
		if !contains(suggestions, candidate) && isCodeFree(ctx, checker, candidate) {
			suggestions = append(suggestions, candidate)
		}
	}

	if len(suggestions) < maxSuggestions {
		candidate := fmt.Sprintf("%s-%d", base, time.Now().Unix()%10000)
		if !contains(suggestions, candidate) && isCodeFree(ctx, checker, candidate) {
			suggestions = append(suggestions, candidate)
		}
	}

	return suggestions
}

// isCodeFree treats lookup errors as taken
func isCodeFree(ctx context.Context, checker CodeChecker, code string) bool {
	taken, err := checker.CodeExists(ctx, code)
	if err != nil {
		return false
	}
	return !taken
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
