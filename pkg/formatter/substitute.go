package formatter

import "strings"

// Substitute replaces ${name} and $name placeholders with values from fields.
// "$$" renders a single dollar sign. Placeholders without a matching field,
// and malformed ones, are copied to the output unchanged.
func Substitute(template string, fields map[string]string) string {
	if !strings.Contains(template, "$") {
		return template
	}

	var sb strings.Builder

	sb.Grow(len(template))

	for i := 0; i < len(template); {
		ch := template[i]
		if ch != '$' || i+1 == len(template) {
			sb.WriteByte(ch)
			i++

			continue
		}

		next := template[i+1]

		switch {
		case next == '$':
			sb.WriteByte('$')

			i += 2

		case next == '{':
			closing := strings.IndexByte(template[i+2:], '}')
			if closing < 0 {
				sb.WriteString(template[i:])

				return sb.String()
			}

			name := template[i+2 : i+2+closing]
			end := i + 2 + closing + 1

			value, ok := fields[name]
			if ok && isIdentifier(name) {
				sb.WriteString(value)
			} else {
				sb.WriteString(template[i:end])
			}

			i = end

		case isIdentStart(next):
			end := i + 2
			for end < len(template) && isIdentPart(template[end]) {
				end++
			}

			if value, ok := fields[template[i+1:end]]; ok {
				sb.WriteString(value)
			} else {
				sb.WriteString(template[i:end])
			}

			i = end

		default:
			sb.WriteByte('$')

			i++
		}
	}

	return sb.String()
}

func isIdentifier(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}

	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}

	return true
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
