package player

// ParseArgs splits a string of command-line arguments on whitespace, respecting single and double quotes.  A quote of
// the other kind inside a quoted run is kept literally.
func ParseArgs(argsString string) []string {
	var args []string
	var quote rune
	current := []rune{}
	hasToken := false

	for _, r := range argsString {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			hasToken = true
		case quote == 0 && (r == ' ' || r == '\t'):
			if hasToken {
				args = append(args, string(current))
				current = current[:0]
				hasToken = false
			}
		default:
			current = append(current, r)
			hasToken = true
		}
	}

	if hasToken {
		args = append(args, string(current))
	}

	return args
}
