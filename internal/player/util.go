package player

import "strings"

// ParseArgs splits a string of command-line arguments.  Single or double quotes group words; a quote of the other
// kind inside a quoted section is kept literally.
func ParseArgs(argsString string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	for _, r := range argsString {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if inArg {
		args = append(args, current.String())
	}
	return args
}
