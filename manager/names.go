package manager

import "regexp"

// nameGrammar is the grammar every block, port, and route name must match.
var nameGrammar = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func validName(name string) bool {
	return nameGrammar.MatchString(name)
}
