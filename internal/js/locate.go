package js

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

type token struct {
	data   string
	offset int
}

// Locator finds source positions for error reporting. The parsed tree
// doesn't carry offsets, so positions are recovered from the token stream.
type Locator struct {
	src    []byte
	tokens []token
}

// NewLocator tokenizes the source, dropping whitespace and comments
func NewLocator(src []byte) *Locator {
	l := js.NewLexer(parse.NewInputBytes(src))
	loc := &Locator{src: src}
	offset := 0
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			break
		}
		if !isSpace(data) {
			loc.tokens = append(loc.tokens, token{string(data), offset})
		}
		offset += len(data)
	}
	return loc
}

func isSpace(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 ||
		bytes.HasPrefix(trimmed, []byte("//")) ||
		bytes.HasPrefix(trimmed, []byte("/*")) ||
		bytes.HasPrefix(trimmed, []byte("<!--")) ||
		bytes.HasPrefix(trimmed, []byte("-->"))
}

// Position converts a byte offset into a 1-based line and column. Columns
// count characters rather than bytes.
func (l *Locator) Position(offset int) (line, column int) {
	line, column, _ = parse.Position(bytes.NewReader(l.src), offset)
	return line, column
}

func (l *Locator) at(i int) string {
	if i < 0 || i >= len(l.tokens) {
		return ""
	}
	return l.tokens[i].data
}

// Find the first occurrence of a sequence of tokens
func (l *Locator) Find(seq ...string) (line, column int, ok bool) {
outer:
	for i := range l.tokens {
		for j, s := range seq {
			if l.at(i+j) != s {
				continue outer
			}
		}
		line, column = l.Position(l.tokens[i].offset)
		return line, column, true
	}
	return 0, 0, false
}

func isAssignOp(s string) bool {
	switch s {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=",
		"&=", "|=", "^=", "&&=", "||=", "??=", "++", "--":
		return true
	}
	return false
}

// Assignment finds the first place name is assigned or updated. Names
// assigned through a destructuring pattern fall back to the last mention.
func (l *Locator) Assignment(name string) (line, column int, ok bool) {
	last := -1
	for i, tok := range l.tokens {
		if tok.data != name || l.at(i-1) == "." {
			continue
		}
		last = i
		next, prev := l.at(i+1), l.at(i-1)
		if isAssignOp(next) && !isDeclKeyword(prev) {
			line, column = l.Position(tok.offset)
			return line, column, true
		}
		if prev == "++" || prev == "--" {
			line, column = l.Position(l.tokens[i-1].offset)
			return line, column, true
		}
	}
	if last >= 0 {
		line, column = l.Position(l.tokens[last].offset)
		return line, column, true
	}
	return 0, 0, false
}

func isDeclKeyword(s string) bool {
	return s == "var" || s == "let" || s == "const"
}

// Nested finds the first import or export keyword inside a block
func (l *Locator) Nested() (keyword string, line, column int, ok bool) {
	depth := 0
	for i, tok := range l.tokens {
		switch tok.data {
		case "{":
			depth++
		case "}":
			depth--
		case "import", "export":
			if depth == 0 || l.at(i-1) == "." {
				continue
			}
			next := l.at(i + 1)
			if next == "(" || next == "." || next == ":" {
				continue
			}
			line, column = l.Position(tok.offset)
			return tok.data, line, column, true
		}
	}
	return "", 0, 0, false
}

// Words returns every identifier-like token in the source
func (l *Locator) Words() []string {
	var words []string
	for _, tok := range l.tokens {
		if IsIdentifier(tok.data) {
			words = append(words, tok.data)
		}
	}
	return words
}
