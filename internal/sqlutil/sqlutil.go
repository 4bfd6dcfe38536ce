// Package sqlutil quotes the MySQL identifiers cleanaudit reads tables from.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a MySQL identifier with backticks, doubling any
// embedded backtick.
// Example: "survey_raw" -> "`survey_raw`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Table references come from config files, so only plain identifiers are accepted.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name contains only letters, digits and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteTableRef validates and quotes a "table" or "schema.table" reference.
// Example: "audit.survey_raw" -> "`audit`.`survey_raw`"
func QuoteTableRef(ref string) (string, error) {
	parts := strings.Split(ref, ".")
	if len(parts) > 2 {
		return "", &InvalidIdentifierError{Name: ref}
	}
	quoted := make([]string, len(parts))
	for i, p := range parts {
		if !IsValidIdentifier(p) {
			return "", &InvalidIdentifierError{Name: ref}
		}
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, "."), nil
}

// InvalidIdentifierError is returned when a table reference contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid table reference: " + e.Name + " (expected table or schema.table of alphanumerics and underscores)"
}
