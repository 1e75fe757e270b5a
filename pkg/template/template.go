// Package template converts form templates between their canonical, token-annotated
// storage text and the rich markup shown in an authoring surface.
package template

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/dukex/formflow/pkg/models"
)

var (
	// ErrUnknownField is returned when a token references a field absent from the catalog.
	ErrUnknownField = errors.New("unknown field")

	// ErrNoEditor is returned when a codec is used without an editor handle.
	ErrNoEditor = errors.New("template editor not bound")
)

const lineBreak = "<br>"

// textEscaper keeps carriage returns as character references, which the markup
// parser does not normalise, and drops NUL, which markup cannot carry.
var textEscaper = strings.NewReplacer("\r", "&#13;", "\x00", "")

var tokenPattern = buildTokenPattern(models.TokenFamilies)

func buildTokenPattern(families []models.TokenFamily) *regexp.Regexp {
	alternatives := make([]string, 0, len(families))
	for _, family := range families {
		alternatives = append(alternatives, regexp.QuoteMeta(string(family))+`\d+`)
	}

	return regexp.MustCompile(`\$\{(?:` + strings.Join(alternatives, "|") + `)\}`)
}

// Encode renders canonical text as editable markup. Every token with a matching
// catalog entry becomes a read-only inline marker showing the entry label; tokens
// without one stay verbatim. Literal text is escaped and newlines become line breaks.
// NUL characters are dropped.
func Encode(canonical string, options []models.Option) string {
	escaped := textEscaper.Replace(html.EscapeString(canonical))

	encoded := tokenPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		option, ok := lookup(options, match)
		if !ok {
			return match
		}

		return marker(option)
	})

	return strings.ReplaceAll(encoded, "\n", lineBreak)
}

func marker(option models.Option) string {
	return fmt.Sprintf(
		`<span id="%s" class="token" contenteditable="false">%s</span>`,
		html.EscapeString(option.Value),
		html.EscapeString(option.Label),
	)
}

func lookup(options []models.Option, token string) (models.Option, bool) {
	for _, option := range options {
		if models.TokenText(option.Value) == token {
			return option, true
		}
	}

	return models.Option{}, false
}

// Tokens returns the token ids referenced by canonical text, in order of appearance.
func Tokens(canonical string) []string {
	matches := tokenPattern.FindAllString(canonical, -1)

	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match[2:len(match)-1])
	}

	return ids
}

// Unresolved returns the token ids that have no entry in the catalog.
func Unresolved(canonical string, options []models.Option) []string {
	var missing []string

	for _, id := range Tokens(canonical) {
		if _, ok := lookup(options, models.TokenText(id)); !ok {
			missing = append(missing, id)
		}
	}

	return missing
}
