package spec

import (
	"strings"
	"unicode"

	"github.com/antlr4-go/antlr/v4"
)

// field is one trimmed part of a spec together with its 1-based rune column.
type field struct {
	text string
	col  int
}

// scanner splits a spec into its id, name and path fields. It reads runes
// from an ANTLR char stream so column numbers match what editors report.
type scanner struct {
	input *antlr.InputStream
}

func newScanner(text string) *scanner {
	return &scanner{input: antlr.NewInputStream(text)}
}

// split partitions on the first ':' and then on the first '=' after it.
// Separators that never appear yield empty fields.
func (s *scanner) split() (id, name, path field) {
	id = s.until(':')
	if s.input.LA(1) == antlr.TokenEOF {
		return id, field{col: s.input.Index() + 1}, field{col: s.input.Index() + 1}
	}
	s.input.Consume()
	name = s.until('=')
	if s.input.LA(1) == antlr.TokenEOF {
		return id, name, field{col: s.input.Index() + 1}
	}
	s.input.Consume()
	path = s.until(antlr.TokenEOF)
	return id, name, path
}

// until consumes runes up to, but not including, the stop rune or EOF.
func (s *scanner) until(stop int) field {
	start := s.input.Index()
	for {
		c := s.input.LA(1)
		if c == antlr.TokenEOF || c == stop {
			break
		}
		s.input.Consume()
	}
	end := s.input.Index()
	if end == start {
		return field{col: start + 1}
	}
	raw := s.input.GetText(start, end-1)
	lead := len([]rune(raw)) - len([]rune(strings.TrimLeftFunc(raw, unicode.IsSpace)))
	return field{
		text: strings.TrimSpace(raw),
		col:  start + lead + 1,
	}
}
