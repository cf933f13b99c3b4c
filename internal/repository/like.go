package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern using ESCAPE '\'.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
