package query

import (
	"strings"
)

// column is a SQL column reference. Only the constants below exist, so
// caller input can never become a column name.
type column string

const (
	colID      column = "c.id"
	colStatus  column = "c.status"
	colType    column = "c.type"
	colTagSlug column = "t.slug"
)

// Fragment is a piece of SQL text paired with the arguments bound by its
// placeholders, in placeholder order. The constructors keep the number of
// '?' placeholders equal to len(args).
type Fragment struct {
	sql  string
	args []any
}

// SQL returns the fragment's SQL text.
func (f Fragment) SQL() string { return f.sql }

// Args returns a copy of the fragment's bound arguments.
func (f Fragment) Args() []any { return append([]any(nil), f.args...) }

// IsZero reports whether the fragment is empty.
func (f Fragment) IsZero() bool { return f.sql == "" }

// raw wraps static SQL text. It panics if the text contains a placeholder,
// which would desynchronize arguments.
func raw(sql string) Fragment {
	if strings.Contains(sql, "?") {
		panic("query: raw fragment must not contain placeholders: " + sql)
	}
	return Fragment{sql: sql}
}

// eq builds "col = ?".
func eq(col column, v any) Fragment {
	return Fragment{sql: string(col) + " = ?", args: []any{v}}
}

// in builds "col IN (?, ?, ...)". An empty list is a programming error;
// callers short-circuit before reaching here.
func in(col column, values []string) Fragment {
	if len(values) == 0 {
		panic("query: in() with no values for " + string(col))
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Fragment{
		sql:  string(col) + " IN (" + placeholders(len(values)) + ")",
		args: args,
	}
}

// bind builds a fragment whose SQL ends in exactly one placeholder, e.g.
// "LIMIT ?".
func bind(prefix string, v any) Fragment {
	if strings.Contains(prefix, "?") {
		panic("query: bind prefix must not contain placeholders: " + prefix)
	}
	return Fragment{sql: prefix + " ?", args: []any{v}}
}

// join concatenates fragments with sep, keeping argument order.
func join(sep string, frags ...Fragment) Fragment {
	var (
		parts []string
		args  []any
	)
	for _, f := range frags {
		if f.IsZero() {
			continue
		}
		parts = append(parts, f.sql)
		args = append(args, f.args...)
	}
	return Fragment{sql: strings.Join(parts, sep), args: args}
}

// prefixed returns "prefix body" or the zero fragment when body is empty.
func prefixed(prefix string, body Fragment) Fragment {
	if body.IsZero() {
		return Fragment{}
	}
	return join(" ", raw(prefix), body)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
