package rendering

import "strings"

var latexEscapes = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'%':  `\%`,
	'#':  `\#`,
	'^':  `\textasciicircum{}`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
	'•':  `\textbullet{}`,
}

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~ and the bullet sign
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		if escaped, ok := latexEscapes[r]; ok {
			result.WriteString(escaped)
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// StripBullet removes a leading "•" or "-" marker so list environments can supply
// their own.
func StripBullet(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	for _, marker := range []string{"•", "-"} {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		}
	}
	return line
}
