// Package query builds composable article filters and renders them as SQL.
package query

import (
	"strings"
	"time"
)

// Predicate is one filter condition over the articles table. A predicate
// that renders an empty clause is a no-op.
type Predicate interface {
	SQL() (string, []interface{})
}

// Filter is an AND-combination of predicates
type Filter struct {
	predicates []Predicate
}

// And returns a filter with every given predicate applied
func And(predicates ...Predicate) Filter {
	var f Filter
	return f.And(predicates...)
}

// And appends predicates, skipping nil ones
func (f Filter) And(predicates ...Predicate) Filter {
	combined := make([]Predicate, 0, len(f.predicates)+len(predicates))
	combined = append(combined, f.predicates...)
	for _, p := range predicates {
		if p != nil {
			combined = append(combined, p)
		}
	}
	return Filter{predicates: combined}
}

// Where renders the filter as a WHERE clause (with leading keyword) and its
// arguments. An empty filter yields an empty clause.
func (f Filter) Where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	for _, p := range f.predicates {
		clause, pArgs := p.SQL()
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, pArgs...)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type keyword struct {
	term string
}

// Keyword matches articles whose title or content contains term, ignoring case
func Keyword(term string) Predicate {
	return keyword{term: strings.TrimSpace(term)}
}

func (k keyword) SQL() (string, []interface{}) {
	if k.term == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(strings.ToLower(k.term)) + "%"
	return `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, []interface{}{pattern, pattern}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type createdBetween struct {
	from, to time.Time
}

// CreatedBetween restricts the ingestion timestamp to [from, to], inclusive
func CreatedBetween(from, to time.Time) Predicate {
	return createdBetween{from: from.UTC(), to: to.UTC()}
}

func (c createdBetween) SQL() (string, []interface{}) {
	if c.from.IsZero() || c.to.IsZero() {
		return "", nil
	}
	return "created_at BETWEEN ? AND ?", []interface{}{c.from, c.to}
}

type int64In struct {
	column string
	ids    []int64
}

// CategoryIn matches any of the given category ids
func CategoryIn(ids ...int64) Predicate {
	return int64In{column: "category_id", ids: ids}
}

// SourceIn matches any of the given source ids
func SourceIn(ids ...int64) Predicate {
	return int64In{column: "source_id", ids: ids}
}

func (p int64In) SQL() (string, []interface{}) {
	if len(p.ids) == 0 {
		return "", nil
	}
	if len(p.ids) == 1 {
		return p.column + " = ?", []interface{}{p.ids[0]}
	}
	args := make([]interface{}, len(p.ids))
	for i, id := range p.ids {
		args[i] = id
	}
	return p.column + " IN (" + placeholders(len(p.ids)) + ")", args
}

type authorIn struct {
	authors []string
}

// AuthorIn matches the exact author strings given
func AuthorIn(authors ...string) Predicate {
	return authorIn{authors: authors}
}

func (p authorIn) SQL() (string, []interface{}) {
	if len(p.authors) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(p.authors))
	for i, a := range p.authors {
		args[i] = a
	}
	return "author IN (" + placeholders(len(p.authors)) + ")", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
