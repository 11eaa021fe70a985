// Package query builds read-only SQL statements for the dashboard views.
//
// Every user-influenced value reaches the database as a bound argument.
// Identifiers (columns, ORDER BY and GROUP BY terms) come from code and are
// still checked against a plain-identifier grammar before use.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/courtside/internal/domain/types"
)

// likeEscape is the ESCAPE character used by Contains.
const likeEscape = `\`

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Predicate is one WHERE-clause term. Inactive predicates impose no constraint.
type Predicate interface {
	Active() bool
	// Clause returns the SQL fragment with ? placeholders and its arguments.
	Clause() (string, []any, error)
}

// Equal matches Column = Value. It is inactive when Value is types.All or blank.
type Equal struct {
	Column string
	Value  any
}

// Active implements Predicate.
func (p Equal) Active() bool {
	if s, ok := p.Value.(string); ok {
		s = strings.TrimSpace(s)
		return s != "" && s != types.All
	}
	return p.Value != nil
}

// Clause implements Predicate.
func (p Equal) Clause() (string, []any, error) {
	if err := checkIdent(p.Column); err != nil {
		return "", nil, err
	}
	v := p.Value
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	return p.Column + " = ?", []any{v}, nil
}

// Between matches Low <= Column <= High. It is always active.
type Between struct {
	Column    string
	Low, High int
}

// Active implements Predicate.
func (p Between) Active() bool { return true }

// Clause implements Predicate.
func (p Between) Clause() (string, []any, error) {
	if err := checkIdent(p.Column); err != nil {
		return "", nil, err
	}
	if p.Low > p.High {
		return "", nil, fmt.Errorf("%w: %s between %d and %d", ErrInvalidRange, p.Column, p.Low, p.High)
	}
	return p.Column + " BETWEEN ? AND ?", []any{p.Low, p.High}, nil
}

// Contains matches rows where any of Columns contains Term as a substring.
// LIKE wildcards in Term match literally. It is inactive when Term is blank.
type Contains struct {
	Columns []string
	Term    string
}

// Active implements Predicate.
func (p Contains) Active() bool { return strings.TrimSpace(p.Term) != "" }

// Clause implements Predicate.
func (p Contains) Clause() (string, []any, error) {
	if len(p.Columns) == 0 {
		return "", nil, fmt.Errorf("%w: contains without columns", ErrUnsafeIdentifier)
	}
	pattern := "%" + EscapeLike(strings.TrimSpace(p.Term)) + "%"
	parts := make([]string, len(p.Columns))
	args := make([]any, len(p.Columns))
	for i, c := range p.Columns {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		parts[i] = c + " LIKE ? ESCAPE '" + likeEscape + "'"
		args[i] = pattern
	}
	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character itself.
func EscapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func checkIdent(s string) error {
	if !identPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrUnsafeIdentifier, s)
	}
	return nil
}
