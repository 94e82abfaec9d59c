package pdfinspect

import (
	"strconv"
	"strings"
)

// Op is one content stream operator with its operands as written.
type Op struct {
	Operator string
	Operands []string
}

// Floats parses the numeric operands. Non-numeric operands are skipped.
func (o Op) Floats() []float64 {
	var out []float64
	for _, s := range o.Operands {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Text decodes the first literal string operand.
func (o Op) Text() string {
	for _, s := range o.Operands {
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			return unescape(s[1 : len(s)-1])
		}
	}
	return ""
}

// Paints reports whether the operator puts marks on the page.
func (o Op) Paints() bool {
	switch o.Operator {
	case "f", "F", "f*", "S", "s", "B", "B*", "b", "b*", "Tj", "TJ", "'", "\"", "Do", "sh":
		return true
	default:
		return false
	}
}

// Parse splits a content stream into operators.
func Parse(content []byte) []Op {
	var ops []Op
	var operands []string
	s := string(content)
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isSpace(c):
			i++
		case c == '%':
			for i < len(s) && s[i] != '\n' && s[i] != '\r' {
				i++
			}
		case c == '(':
			end := stringEnd(s, i)
			operands = append(operands, s[i:end])
			i = end
		case c == '<' && i+1 < len(s) && s[i+1] == '<':
			end := matchDictEnd([]byte(s), i)
			if end == -1 {
				end = len(s) - 2
			}
			operands = append(operands, s[i:end+2])
			i = end + 2
		case c == '<':
			end := strings.IndexByte(s[i:], '>')
			if end == -1 {
				end = len(s) - i - 1
			}
			operands = append(operands, s[i:i+end+1])
			i += end + 1
		case c == '[':
			end := arrayEnd(s, i)
			operands = append(operands, s[i:end])
			i = end
		default:
			j := i + 1
			for j < len(s) && !isSpace(s[j]) && !isDelimiter(s[j]) {
				j++
			}
			tok := s[i:j]
			i = j
			if c == '/' || isNumber(tok) {
				operands = append(operands, tok)
				continue
			}
			ops = append(ops, Op{Operator: tok, Operands: operands})
			operands = nil
		}
	}
	return ops
}

func stringEnd(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

func arrayEnd(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			i = stringEnd(s, i) - 1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := 0
			n := 0
			for n < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
				v = v*8 + int(s[i]-'0')
				i++
				n++
			}
			i--
			sb.WriteByte(byte(v))
		case '\n':
		default:
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\f', 0:
		return true
	default:
		return false
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}
