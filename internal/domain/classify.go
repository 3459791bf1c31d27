package domain

// Classify maps a raw status string to the id of the column that accepts it.
// Definitions are consulted in configured order and the first case-insensitive
// alias match wins. An unrecognized status falls back to the first definition;
// with no definitions at all the second return value is false. The function is
// pure and never fails.
func Classify(status string, defs []ColumnDefinition) (string, bool) {
	for _, def := range defs {
		if def.Matches(status) {
			return def.ID, true
		}
	}
	if len(defs) > 0 {
		return defs[0].ID, true
	}
	return "", false
}
