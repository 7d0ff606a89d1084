// Package pgquery builds the parameterised Postgres statements behind the
// analytics endpoints.
package pgquery

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kiranshivaraju/logtrends/pkg/models"
)

// BucketWidth is the fixed histogram bucket width.
const BucketWidth = 30 * time.Minute

// BucketOrigin anchors bucket boundaries so they do not move between calls.
var BucketOrigin = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	bucketExpr      = `date_bin('30 minutes', %s, TIMESTAMP '2001-01-01')`
	timestampLayout = "2006-01-02 15:04:05.999999"
)

// Query is a statement plus its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

// QueryBuilder constructs safe analytics queries.
// All methods are pure functions with no side effects.
// Zero value is ready to use.
type QueryBuilder struct{}

// LabelTrends ranks records per label by recency and counts them, with the
// distinct-uuid cardinality taken by a second, independent scan.
func (b QueryBuilder) LabelTrends(w models.Window) Query {
	sql := `WITH ranked AS (
  SELECT ` + b.recordColumns("l") + `,
    ROW_NUMBER() OVER (PARTITION BY l.label ORDER BY l.create_date DESC, l.uuid) AS rn,
    COUNT(*) OVER (PARTITION BY l.label) AS total
  FROM logs l
  WHERE ` + b.windowPredicate("l", 1) + `
), novelty AS (
  SELECT n.label, COUNT(DISTINCT n.uuid) AS distinct_count
  FROM logs n
  WHERE ` + b.windowPredicate("n", 1) + `
  GROUP BY n.label
)
SELECT r.uuid, r.label, r.category, r.subcategory, r.create_date, r.log, r.total, v.distinct_count
FROM ranked r
JOIN novelty v ON v.label = r.label
WHERE r.rn = 1
ORDER BY r.create_date DESC, r.label`
	return Query{SQL: sql, Args: b.windowArgs(w)}
}

// CountActiveGroups counts groups with at least one member inside the window.
func (b QueryBuilder) CountActiveGroups(w models.Window) Query {
	sql := `SELECT COUNT(*) FROM unique_errors e
WHERE EXISTS (
  SELECT 1 FROM logs l
  WHERE l.uuid = ANY(e.ids) AND ` + b.windowPredicate("l", 1) + `
)`
	return Query{SQL: sql, Args: b.windowArgs(w)}
}

// ActiveGroupsPage resolves each group touching the window to its most recent
// in-window record, ordered by that record's recency.
func (b QueryBuilder) ActiveGroupsPage(w models.Window, offset, limit int) Query {
	sql := `SELECT e.id, COALESCE(array_length(e.ids, 1), 0), r.window_count,
  r.category, r.subcategory, r.create_date, r.log
FROM unique_errors e
JOIN LATERAL (
  SELECT ` + b.recordColumns("l") + `, COUNT(*) OVER () AS window_count
  FROM logs l
  WHERE l.uuid = ANY(e.ids) AND ` + b.windowPredicate("l", 1) + `
  ORDER BY l.create_date DESC, l.uuid
  LIMIT 1
) r ON true
ORDER BY r.create_date DESC, e.id
OFFSET $3 LIMIT $4`
	return Query{SQL: sql, Args: append(b.windowArgs(w), offset, limit)}
}

// GroupActivity resolves one group's size, in-window count, and its last and
// first in-window records. No row comes back when the group does not exist.
func (b QueryBuilder) GroupActivity(id int64, w models.Window) Query {
	sql := `SELECT e.id, COALESCE(array_length(e.ids, 1), 0),
  (SELECT COUNT(*) FROM logs c WHERE c.uuid = ANY(e.ids) AND ` + b.windowPredicate("c", 2) + `),
  newest.uuid, newest.label, newest.category, newest.subcategory, newest.create_date, newest.log,
  oldest.uuid, oldest.label, oldest.category, oldest.subcategory, oldest.create_date, oldest.log
FROM unique_errors e
LEFT JOIN LATERAL (
  SELECT ` + b.recordColumns("l") + ` FROM logs l
  WHERE l.uuid = ANY(e.ids) AND ` + b.windowPredicate("l", 2) + `
  ORDER BY l.create_date DESC, l.uuid
  LIMIT 1
) newest ON true
LEFT JOIN LATERAL (
  SELECT ` + b.recordColumns("f") + ` FROM logs f
  WHERE f.uuid = ANY(e.ids) AND ` + b.windowPredicate("f", 2) + `
  ORDER BY f.create_date ASC, f.uuid
  LIMIT 1
) oldest ON true
WHERE e.id = $1`
	return Query{SQL: sql, Args: append([]any{id}, b.windowArgs(w)...)}
}

// CountGroupLogs counts a group's records inside the window.
func (b QueryBuilder) CountGroupLogs(id int64, w models.Window) Query {
	sql := `SELECT COUNT(*) FROM unique_errors e
JOIN logs l ON l.uuid = ANY(e.ids)
WHERE e.id = $1 AND ` + b.windowPredicate("l", 2)
	return Query{SQL: sql, Args: append([]any{id}, b.windowArgs(w)...)}
}

// GroupLogs pages through a group's in-window records, newest first.
func (b QueryBuilder) GroupLogs(id int64, w models.Window, offset, limit int) Query {
	sql := `SELECT ` + b.recordColumns("l") + `
FROM unique_errors e
JOIN logs l ON l.uuid = ANY(e.ids)
WHERE e.id = $1 AND ` + b.windowPredicate("l", 2) + `
ORDER BY l.create_date DESC, l.uuid
OFFSET $4 LIMIT $5`
	return Query{SQL: sql, Args: append(append([]any{id}, b.windowArgs(w)...), offset, limit)}
}

// BucketCounts aggregates events into 30-minute buckets. A nil groupID
// counts every log record.
func (b QueryBuilder) BucketCounts(groupID *int64, w models.Window) Query {
	bucket := fmt.Sprintf(bucketExpr, "l.create_date")
	if groupID == nil {
		sql := `SELECT ` + bucket + ` AS bucket, COUNT(*)
FROM logs l
WHERE ` + b.windowPredicate("l", 1) + `
GROUP BY 1
ORDER BY 1`
		return Query{SQL: sql, Args: b.windowArgs(w)}
	}
	sql := `SELECT ` + bucket + ` AS bucket, COUNT(*)
FROM unique_errors e
JOIN logs l ON l.uuid = ANY(e.ids)
WHERE e.id = $1 AND ` + b.windowPredicate("l", 2) + `
GROUP BY 1
ORDER BY 1`
	return Query{SQL: sql, Args: append([]any{*groupID}, b.windowArgs(w)...)}
}

// LabelPivot counts events per bucket and label through crosstab, one column
// per label in the given order. crosstab only accepts query text, so the
// window bounds are rendered as literals into the source query.
func (b QueryBuilder) LabelPivot(labels []string, w models.Window) Query {
	source := fmt.Sprintf(`SELECT `+bucketExpr+` AS bucket, label, COUNT(*)::bigint
FROM logs
WHERE create_date > TIMESTAMP %s AND create_date <= TIMESTAMP %s
GROUP BY 1, 2
ORDER BY 1, 2`,
		"create_date",
		quoteLiteral(w.From.UTC().Format(timestampLayout)),
		quoteLiteral(w.To.UTC().Format(timestampLayout)))

	values := make([]string, len(labels))
	selects := make([]string, len(labels))
	columns := make([]string, len(labels))
	for i, label := range labels {
		ident := pgx.Identifier{label}.Sanitize()
		values[i] = "(" + quoteLiteral(label) + ")"
		selects[i] = fmt.Sprintf("COALESCE(ct.%s, 0)", ident)
		columns[i] = ident + " bigint"
	}
	categories := "VALUES " + strings.Join(values, ", ")

	sql := `SELECT ct.bucket`
	if len(selects) > 0 {
		sql += ", " + strings.Join(selects, ", ")
	}
	sql += `
FROM crosstab($1::text, $2::text) AS ct(bucket timestamp`
	if len(columns) > 0 {
		sql += ", " + strings.Join(columns, ", ")
	}
	sql += `)
ORDER BY ct.bucket`
	return Query{SQL: sql, Args: []any{source, categories}}
}

func (b QueryBuilder) recordColumns(alias string) string {
	return fmt.Sprintf(
		"%[1]s.uuid, %[1]s.label, COALESCE(%[1]s.category, '') AS category, "+
			"COALESCE(%[1]s.subcategory, '') AS subcategory, %[1]s.create_date, COALESCE(%[1]s.log, '') AS log",
		alias)
}

// windowPredicate renders (From, To] against placeholders $n and $n+1.
func (b QueryBuilder) windowPredicate(alias string, n int) string {
	return fmt.Sprintf("%[1]s.create_date > $%[2]d AND %[1]s.create_date <= $%[3]d", alias, n, n+1)
}

func (b QueryBuilder) windowArgs(w models.Window) []any {
	return []any{w.From.UTC(), w.To.UTC()}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
