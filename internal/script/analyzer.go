package script

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// DefaultKeywordCount is the number of keywords extracted per scene
const DefaultKeywordCount = 5

// Analyzer turns a raw script into scenes with search keywords
type Analyzer struct {
	keywordCount int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{keywordCount: DefaultKeywordCount}
}

// Scenes are separated by one or more whitespace-only lines
var sceneSeparator = regexp.MustCompile(`\n\s*\n`)

// SplitScenes splits a script on blank-line boundaries, trims each piece
// and drops the empty ones. A script with no content yields nil.
func SplitScenes(script string) []string {
	var scenes []string
	for _, part := range sceneSeparator.Split(script, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			scenes = append(scenes, part)
		}
	}
	return scenes
}

// ExtractKeywords returns the top-n tokens of text ranked by descending
// frequency, ties broken by first-encountered order. Tokens are purely
// alphabetic, lowercased for the detected language, and filtered against
// that language's stopword list.
func ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	info := whatlanggo.Detect(text)
	iso := info.Lang.Iso6391()
	lowered := cases.Lower(language.Make(iso)).String(text)

	stop := stopwordsFor(iso)

	freq := make(map[string]int)
	var order []string
	for _, token := range tokenize(lowered, iso) {
		if _, ok := stop[token]; ok {
			continue
		}
		if freq[token] == 0 {
			order = append(order, token)
		}
		freq[token]++
	}

	// Stable sort keeps first-encountered order within equal frequencies
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Analyze splits a script into scenes and extracts keywords for each.
// Scene ids are sequential and unique within one analysis.
func (a *Analyzer) Analyze(script string) []model.Scene {
	pieces := SplitScenes(script)
	scenes := make([]model.Scene, 0, len(pieces))
	for i, text := range pieces {
		scenes = append(scenes, model.Scene{
			ID:       fmt.Sprintf("scene-%d", i+1),
			Text:     text,
			Keywords: ExtractKeywords(text, a.keywordCount),
		})
	}
	return scenes
}

// tokenize breaks lowered text into purely alphabetic tokens. Splitting on
// every non-letter rune guarantees the alphabetic property. Japanese text
// is not space-delimited, so letter runs are additionally split where the
// writing system changes; hiragana runs then mostly carry particles, which
// the stopword list removes.
func tokenize(text, iso string) []string {
	runs := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if iso != "ja" {
		return runs
	}

	var tokens []string
	for _, run := range runs {
		tokens = append(tokens, splitScriptRuns(run)...)
	}
	return tokens
}

// splitScriptRuns cuts a token at Han/Hiragana/Katakana boundaries
func splitScriptRuns(token string) []string {
	var (
		tokens []string
		cur    []rune
		prev   *unicode.RangeTable
	)
	for _, r := range token {
		table := scriptOf(r)
		if prev != nil && table != prev && len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
		prev = table
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}
	return tokens
}

func scriptOf(r rune) *unicode.RangeTable {
	switch {
	case unicode.Is(unicode.Hiragana, r):
		return unicode.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return unicode.Katakana
	case unicode.Is(unicode.Han, r):
		return unicode.Han
	default:
		return unicode.Latin
	}
}
