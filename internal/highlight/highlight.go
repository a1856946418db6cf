// Package highlight renders paste source as line-numbered HTML using chroma.
package highlight

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"pasteapi/internal/model"
)

// CSSClass is the class of the element wrapping every rendered paste.
const CSSClass = "source"

// Chroma is a model.Highlighter backed by chroma. Output uses CSS classes
// rather than inline styles, so it is stable for a given (source, lexer) pair.
type Chroma struct {
	formatter *html.Formatter
	style     *chroma.Style
}

var _ model.Highlighter = (*Chroma)(nil)

// NewChroma builds a highlighter that emits line numbers in a table.
func NewChroma() *Chroma {
	return &Chroma{
		formatter: html.New(
			html.WithClasses(true),
			html.WithLineNumbers(true),
			html.LineNumbersInTable(true),
		),
		style: styles.Fallback,
	}
}

var (
	byNameOnce sync.Once
	byName     map[string]chroma.Lexer
)

// lookup resolves a lexer by its name or one of its aliases, ignoring case.
// File names and extensions are not matched, unlike lexers.Get.
func lookup(name string) chroma.Lexer {
	byNameOnce.Do(func() {
		byName = make(map[string]chroma.Lexer)
		for _, l := range lexers.GlobalLexerRegistry.Lexers {
			cfg := l.Config()
			if _, ok := byName[strings.ToLower(cfg.Name)]; !ok {
				byName[strings.ToLower(cfg.Name)] = l
			}
			for _, alias := range cfg.Aliases {
				if _, ok := byName[strings.ToLower(alias)]; !ok {
					byName[strings.ToLower(alias)] = l
				}
			}
		}
	})
	return byName[strings.ToLower(strings.TrimSpace(name))]
}

// Highlight renders source with the named lexer. Unknown lexer names fail with
// model.ErrLexerNotFound; there is no fallback to plain text.
func (c *Chroma) Highlight(source, lexer string) (string, error) {
	l := lookup(lexer)
	if l == nil {
		return "", fmt.Errorf("%w: %q", model.ErrLexerNotFound, lexer)
	}

	it, err := chroma.Coalesce(l).Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}

	var b strings.Builder
	b.WriteString(`<div class="` + CSSClass + `">`)
	if err := c.formatter.Format(&b, c.style, it); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}

// Known reports whether name is the name or an alias of a registered lexer.
func Known(name string) bool {
	return lookup(name) != nil
}

// Names lists the primary name of every registered lexer, sorted.
func Names() []string {
	names := lexers.Names(false)
	sort.Strings(names)
	return names
}
