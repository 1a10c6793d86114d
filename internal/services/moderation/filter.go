package moderation

import (
	"regexp"
	"strings"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictFlag
	VerdictBlock
)

// EvaluateFilters screens a work's text against the active content filters,
// in filter creation order. The first matching block filter short-circuits
// the scan; flag matches (moderate is an alias of flag) are collected across
// the full scan. The evaluator never mutates anything; the caller applies
// the verdict.
func EvaluateFilters(title, description string, filters []model.ContentFilter) Verdict {
	flagged := false
	for _, filter := range filters {
		if !filter.IsActive {
			continue
		}

		text := searchableText(filter.Type, title, description)
		if text == "" {
			continue
		}
		if !keywordMatches(filter.Keyword, text) {
			continue
		}

		switch filter.Action {
		case enums.FilterActionBlock:
			return VerdictBlock
		case enums.FilterActionFlag, enums.FilterActionModerate:
			flagged = true
		}
	}

	if flagged {
		return VerdictFlag
	}
	return VerdictNone
}

// searchableText builds the lowercase text a filter applies to: the title
// for title/both filters, plus the description for description/both filters
// when one is present.
func searchableText(filterType enums.FilterType, title, description string) string {
	var b strings.Builder
	if filterType == enums.FilterTypeTitle || filterType == enums.FilterTypeBoth {
		b.WriteString(strings.ToLower(title))
	}
	if (filterType == enums.FilterTypeDescription || filterType == enums.FilterTypeBoth) && description != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.ToLower(description))
	}
	return b.String()
}

// keywordMatches treats the keyword as a case-insensitive pattern. Keywords
// that do not compile fall back to a plain substring match instead of
// failing the submission that triggered the scan.
func keywordMatches(keyword, text string) bool {
	re, err := regexp.Compile("(?i)" + keyword)
	if err != nil {
		return strings.Contains(text, strings.ToLower(keyword))
	}
	return re.MatchString(text)
}
