package patient

import (
	"regexp"
	"strings"
)

var cedulaNormRE = regexp.MustCompile(`[^0-9A-Za-z]+`)

// NormalizeCedula reduces a national identity document to its canonical
// form: every character that is not a digit or an ASCII letter is removed
// and the rest is upper-cased. Values that normalize to nothing (empty,
// whitespace, punctuation only) yield "".
//
// The canonical form is what uniqueness is enforced on, so "1-234-567" and
// "12 34567" refer to the same person.
func NormalizeCedula(value string) string {
	return strings.ToUpper(cedulaNormRE.ReplaceAllString(value, ""))
}
