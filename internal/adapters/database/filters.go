package database

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term as a literal substring
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// anyColumnContains matches term case-insensitively against any of the columns
func anyColumnContains(term string, columns ...string) exp.Expression {
	pattern := containsPattern(term)
	ors := make([]exp.Expression, 0, len(columns))
	for _, col := range columns {
		ors = append(ors, goqu.I(col).ILike(pattern))
	}
	return goqu.Or(ors...)
}

// arrayOverlaps matches rows whose text[] column shares an element with values
func arrayOverlaps(column string, values []string) exp.Expression {
	return goqu.L("? && ?", goqu.I(column), pq.Array(values))
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func orderBy(column string, desc bool) exp.OrderedExpression {
	if desc {
		return goqu.I(column).Desc()
	}
	return goqu.I(column).Asc()
}
