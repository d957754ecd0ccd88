package command_safety

import "strings"

// ParsePlainCommands splits a shell script into word-only command vectors
// joined by &&, ||, ; or |. It returns nil when the script contains any
// construct whose effect cannot be judged from the words alone: redirection,
// subshells, expansion, substitution, background jobs, or assignments.
func ParsePlainCommands(script string) [][]string {
	s := &scanner{src: script}
	return s.run()
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) run() [][]string {
	var commands [][]string
	var words []string
	pendingOperator := false

	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			break
		}

		switch ch := s.src[s.pos]; {
		case ch == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}

		case ch == '>' || ch == '<' || ch == '(' || ch == ')' || ch == '`' || ch == '$':
			return nil

		case ch == '&':
			if s.pos+1 >= len(s.src) || s.src[s.pos+1] != '&' {
				// bare & backgrounds the command
				return nil
			}
			if len(words) == 0 {
				return nil
			}
			commands = append(commands, words)
			words = nil
			pendingOperator = true
			s.pos += 2

		case ch == '|':
			if len(words) == 0 {
				return nil
			}
			commands = append(commands, words)
			words = nil
			pendingOperator = true
			s.pos++
			if s.pos < len(s.src) && s.src[s.pos] == '|' {
				s.pos++
			}

		case ch == ';':
			if len(words) == 0 {
				return nil
			}
			commands = append(commands, words)
			words = nil
			pendingOperator = true
			s.pos++

		default:
			word, ok := s.word()
			if !ok {
				return nil
			}
			// FOO=bar at command start is a variable assignment.
			if len(words) == 0 && strings.Contains(word, "=") {
				return nil
			}
			words = append(words, word)
			pendingOperator = false
		}
	}

	if pendingOperator {
		return nil
	}
	if len(words) > 0 {
		commands = append(commands, words)
	}
	return commands
}

// word consumes one token, which may mix plain text with single- or
// double-quoted segments. Quoted segments must not contain expansions.
func (s *scanner) word() (string, bool) {
	var b strings.Builder
	gotAny := false

	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' ||
			ch == '&' || ch == '|' || ch == ';' || ch == '#' {
			break
		}
		switch ch {
		case '>', '<', '(', ')', '`', '$':
			return "", false
		case '\'', '"':
			segment, ok := s.quoted(ch)
			if !ok {
				return "", false
			}
			b.WriteString(segment)
			gotAny = true
		default:
			b.WriteByte(ch)
			s.pos++
			gotAny = true
		}
	}

	if !gotAny {
		return "", false
	}
	return b.String(), true
}

func (s *scanner) quoted(quote byte) (string, bool) {
	s.pos++ // opening quote
	var b strings.Builder
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == quote {
			s.pos++
			return b.String(), true
		}
		// No expansion inside double quotes either.
		if quote == '"' && (ch == '$' || ch == '`') {
			return "", false
		}
		b.WriteByte(ch)
		s.pos++
	}
	return "", false // unterminated
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}
