package lexer

import (
	"strings"
)

// LineKind classifies a physical line
type LineKind int

const (
	Blank LineKind = iota
	Code
	Comment
)

func (k LineKind) String() string {
	switch k {
	case Code:
		return "code"
	case Comment:
		return "comment"
	default:
		return "blank"
	}
}

// Line is one physical source line
type Line struct {
	Number int // 1-based
	Kind   LineKind
	Raw    string
	Code   string // comments removed, string contents removed, delimiters kept
}

// Counts tallies line kinds. Total always equals Code + Comment + Blank.
type Counts struct {
	Total   int
	Code    int
	Comment int
	Blank   int
}

type state struct {
	block  *BlockComment
	quote  *Quote
	syntax Syntax
}

// Scan splits content into lines and classifies each one. A trailing newline
// does not start an extra line; "\r\n" endings are accepted.
func Scan(syntax Syntax, content []byte) []Line {
	if len(content) == 0 {
		return nil
	}
	text := string(content)
	text = strings.TrimSuffix(text, "\n")
	rawLines := strings.Split(text, "\n")

	st := &state{syntax: syntax}
	lines := make([]Line, 0, len(rawLines))
	for i, raw := range rawLines {
		raw = strings.TrimSuffix(raw, "\r")
		lines = append(lines, st.scanLine(i+1, raw))
	}
	return lines
}

// Tally counts line kinds
func Tally(lines []Line) Counts {
	c := Counts{Total: len(lines)}
	for _, l := range lines {
		switch l.Kind {
		case Code:
			c.Code++
		case Comment:
			c.Comment++
		default:
			c.Blank++
		}
	}
	return c
}

// CountLines scans content and tallies it in one step
func CountLines(syntax Syntax, content []byte) Counts {
	return Tally(Scan(syntax, content))
}

func (st *state) scanLine(number int, raw string) Line {
	var code strings.Builder
	hasCode, hasComment := false, false
	i := 0

scan:
	for i < len(raw) {
		if st.block != nil {
			hasComment = true
			if st.block.LineStart {
				if i == 0 && strings.HasPrefix(raw, st.block.Close) {
					st.block = nil
				}
				break scan
			}
			idx := strings.Index(raw[i:], st.block.Close)
			if idx < 0 {
				break scan
			}
			i += idx + len(st.block.Close)
			st.block = nil
			continue
		}

		if st.quote != nil {
			hasCode = true
			closing := st.quote.closing()
			j := i
			for j < len(raw) {
				if !st.quote.Raw && raw[j] == '\\' {
					j += 2
					continue
				}
				if strings.HasPrefix(raw[j:], closing) {
					break
				}
				j++
			}
			if j >= len(raw) {
				break scan
			}
			code.WriteString(closing)
			i = j + len(closing)
			st.quote = nil
			continue
		}

		c := raw[i]
		if c == ' ' || c == '\t' {
			code.WriteByte(c)
			i++
			continue
		}

		for k := range st.syntax.BlockComments {
			bc := st.syntax.BlockComments[k]
			if bc.LineStart && i != 0 {
				continue
			}
			if strings.HasPrefix(raw[i:], bc.Open) {
				hasComment = true
				st.block = &bc
				i += len(bc.Open)
				continue scan
			}
		}

		for _, marker := range st.syntax.LineComments {
			if !strings.HasPrefix(raw[i:], marker) {
				continue
			}
			if marker == "#" && st.syntax.HashNeedsSpace && i > 0 && raw[i-1] != ' ' && raw[i-1] != '\t' {
				continue
			}
			hasComment = true
			break scan
		}

		for k := range st.syntax.Quotes {
			q := st.syntax.Quotes[k]
			if strings.HasPrefix(raw[i:], q.Delim) {
				hasCode = true
				code.WriteString(q.Delim)
				st.quote = &q
				i += len(q.Delim)
				continue scan
			}
		}

		hasCode = true
		code.WriteByte(c)
		i++
	}

	if st.quote != nil && !st.quote.MultiLine {
		st.quote = nil
	}

	line := Line{Number: number, Raw: raw, Code: code.String()}
	switch {
	case strings.TrimSpace(raw) == "":
		line.Kind = Blank
	case hasCode:
		line.Kind = Code
	case hasComment:
		line.Kind = Comment
	default:
		line.Kind = Code
	}
	return line
}
