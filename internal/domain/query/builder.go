package query

import (
	"fmt"
	"strings"
)

// Statement is a finished SQL statement with its bound arguments.
type Statement struct {
	// Name identifies the view shape, e.g. "competitors.list". Used for metrics and logs.
	Name string
	SQL  string
	Args []any
}

// Key returns the memoization key: the exact SQL text plus typed arguments.
// Each part is length-prefixed so no argument value can mimic a boundary.
func (s Statement) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%s", len(s.SQL), s.SQL)
	for _, a := range s.Args {
		v := fmt.Sprint(a)
		fmt.Fprintf(&b, "|%T|%d:%s", a, len(v), v)
	}
	return b.String()
}

// Builder composes a base SELECT ... FROM ... with conjunctive predicates.
// The base must not contain a WHERE clause of its own.
type Builder struct {
	name    string
	base    string
	preds   []Predicate
	groupBy []string
	orderBy []string
	limit   int
}

// New returns a Builder for the named view shape.
func New(name, base string) *Builder {
	return &Builder{
		name:  name,
		base:  strings.TrimSpace(base),
		preds: make([]Predicate, 0, 4),
	}
}

// Where adds predicates. Inactive predicates are dropped at Build time.
func (b *Builder) Where(preds ...Predicate) *Builder {
	b.preds = append(b.preds, preds...)
	return b
}

// GroupBy adds grouping columns.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groupBy = append(b.groupBy, columns...)
	return b
}

// OrderBy adds ordering terms of the form "column" or "column ASC|DESC".
func (b *Builder) OrderBy(terms ...string) *Builder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

// Limit bounds the row count; n is bound as an argument.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Build renders the statement.
func (b *Builder) Build() (Statement, error) {
	var sql strings.Builder
	sql.WriteString(b.base)
	args := make([]any, 0, len(b.preds)+1)

	first := true
	for _, p := range b.preds {
		if p == nil || !p.Active() {
			continue
		}
		clause, pargs, err := p.Clause()
		if err != nil {
			return Statement{}, fmt.Errorf("%s: %w", b.name, err)
		}
		if first {
			sql.WriteString(" WHERE ")
			first = false
		} else {
			sql.WriteString(" AND ")
		}
		sql.WriteString(clause)
		args = append(args, pargs...)
	}

	if len(b.groupBy) > 0 {
		for _, c := range b.groupBy {
			if err := checkIdent(c); err != nil {
				return Statement{}, fmt.Errorf("%s: %w", b.name, err)
			}
		}
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, len(b.orderBy))
		for i, t := range b.orderBy {
			term, err := orderTerm(t)
			if err != nil {
				return Statement{}, fmt.Errorf("%s: %w", b.name, err)
			}
			terms[i] = term
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limit != 0 {
		if b.limit < 0 {
			return Statement{}, fmt.Errorf("%s: %w: %d", b.name, ErrInvalidLimit, b.limit)
		}
		sql.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}

	return Statement{Name: b.name, SQL: sql.String(), Args: args}, nil
}

func orderTerm(t string) (string, error) {
	fields := strings.Fields(t)
	switch len(fields) {
	case 1:
		return fields[0], checkIdent(fields[0])
	case 2:
		dir := strings.ToUpper(fields[1])
		if dir != "ASC" && dir != "DESC" {
			return "", fmt.Errorf("%w: order direction %q", ErrUnsafeIdentifier, fields[1])
		}
		return fields[0] + " " + dir, checkIdent(fields[0])
	default:
		return "", fmt.Errorf("%w: order term %q", ErrUnsafeIdentifier, t)
	}
}
