package table

// Row is one opaque record in a table's data set. Fields are interpreted only
// through configuration-supplied accessors; the identifier field is the one
// exception (see Config.IDField).
type Row map[string]any

// Accessor extracts a value from a row for display, filtering, or sorting.
// It has two variants: a field-name lookup and a derivation function.
type Accessor interface {
	Value(Row) any
}

// Field is an accessor that looks up a row field by name. A missing field
// yields nil rather than an error.
type Field string

// Value implements Accessor.
func (f Field) Value(row Row) any {
	if row == nil {
		return nil
	}
	return row[string(f)]
}

// Derive is an accessor backed by a derivation function.
type Derive func(Row) any

// Value implements Accessor.
func (d Derive) Value(row Row) any {
	if d == nil {
		return nil
	}
	return d(row)
}

// accessorOr resolves the accessor for a column or filter: the configured
// accessor when present, otherwise a field lookup under the given id.
func accessorOr(a Accessor, id string) Accessor {
	if a != nil {
		return a
	}
	return Field(id)
}
