package pgquery

import (
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/logtrends/pkg/models"
)

var testWindow = models.Window{
	From: time.Date(2023, 10, 15, 13, 0, 0, 0, time.UTC),
	To:   time.Date(2023, 10, 16, 13, 0, 0, 0, time.UTC),
}

func TestLabelTrends(t *testing.T) {
	q := QueryBuilder{}.LabelTrends(testWindow)

	for _, want := range []string{
		"ROW_NUMBER() OVER (PARTITION BY l.label ORDER BY l.create_date DESC, l.uuid) AS rn",
		"COUNT(*) OVER (PARTITION BY l.label) AS total",
		"COUNT(DISTINCT n.uuid) AS distinct_count",
		"l.create_date > $1 AND l.create_date <= $2",
		"n.create_date > $1 AND n.create_date <= $2",
		"WHERE r.rn = 1",
		"ORDER BY r.create_date DESC",
	} {
		if !strings.Contains(q.SQL, want) {
			t.Errorf("expected SQL to contain %q\ngot: %s", want, q.SQL)
		}
	}
	if len(q.Args) != 2 || q.Args[0] != testWindow.From || q.Args[1] != testWindow.To {
		t.Errorf("unexpected args: %v", q.Args)
	}
}

func TestActiveGroupsPage(t *testing.T) {
	q := QueryBuilder{}.ActiveGroupsPage(testWindow, 40, 20)

	if !strings.Contains(q.SQL, "OFFSET $3 LIMIT $4") {
		t.Errorf("expected offset/limit placeholders, got: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, "ORDER BY r.create_date DESC, e.id") {
		t.Errorf("expected recency ordering, got: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, "COALESCE(array_length(e.ids, 1), 0)") {
		t.Errorf("expected all-time group size, got: %s", q.SQL)
	}
	if len(q.Args) != 4 || q.Args[2] != 40 || q.Args[3] != 20 {
		t.Errorf("unexpected args: %v", q.Args)
	}
}

func TestCountActiveGroups(t *testing.T) {
	q := QueryBuilder{}.CountActiveGroups(testWindow)

	if !strings.Contains(q.SQL, "WHERE EXISTS") || !strings.Contains(q.SQL, "l.uuid = ANY(e.ids)") {
		t.Errorf("expected containment existence check, got: %s", q.SQL)
	}
	if len(q.Args) != 2 {
		t.Errorf("expected 2 args, got %d", len(q.Args))
	}
}

func TestGroupActivity(t *testing.T) {
	q := QueryBuilder{}.GroupActivity(7, testWindow)

	if !strings.HasSuffix(q.SQL, "WHERE e.id = $1") {
		t.Errorf("expected group id filter, got: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, "ORDER BY l.create_date DESC, l.uuid") {
		t.Errorf("expected newest ordering, got: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, "ORDER BY f.create_date ASC, f.uuid") {
		t.Errorf("expected oldest ordering, got: %s", q.SQL)
	}
	if len(q.Args) != 3 || q.Args[0] != int64(7) {
		t.Errorf("unexpected args: %v", q.Args)
	}
}

func TestGroupLogs(t *testing.T) {
	q := QueryBuilder{}.GroupLogs(3, testWindow, 10, 5)

	if !strings.Contains(q.SQL, "ORDER BY l.create_date DESC, l.uuid\nOFFSET $4 LIMIT $5") {
		t.Errorf("expected deterministic ordering before pagination, got: %s", q.SQL)
	}
	if len(q.Args) != 5 || q.Args[0] != int64(3) || q.Args[3] != 10 || q.Args[4] != 5 {
		t.Errorf("unexpected args: %v", q.Args)
	}
}

func TestBucketCounts(t *testing.T) {
	b := QueryBuilder{}

	t.Run("all logs", func(t *testing.T) {
		q := b.BucketCounts(nil, testWindow)
		if strings.Contains(q.SQL, "unique_errors") {
			t.Errorf("unexpected group join: %s", q.SQL)
		}
		if !strings.Contains(q.SQL, "date_bin('30 minutes', l.create_date, TIMESTAMP '2001-01-01')") {
			t.Errorf("expected epoch-aligned bucketing, got: %s", q.SQL)
		}
		if len(q.Args) != 2 {
			t.Errorf("expected 2 args, got %d", len(q.Args))
		}
	})

	t.Run("one group", func(t *testing.T) {
		id := int64(42)
		q := b.BucketCounts(&id, testWindow)
		if !strings.Contains(q.SQL, "WHERE e.id = $1 AND l.create_date > $2 AND l.create_date <= $3") {
			t.Errorf("expected group filter, got: %s", q.SQL)
		}
		if len(q.Args) != 3 || q.Args[0] != int64(42) {
			t.Errorf("unexpected args: %v", q.Args)
		}
	})
}

func TestLabelPivot(t *testing.T) {
	q := QueryBuilder{}.LabelPivot([]string{"DATA_QUERY", "TRANSPORT"}, testWindow)

	expectedSelect := `SELECT ct.bucket, COALESCE(ct."DATA_QUERY", 0), COALESCE(ct."TRANSPORT", 0)
FROM crosstab($1::text, $2::text) AS ct(bucket timestamp, "DATA_QUERY" bigint, "TRANSPORT" bigint)
ORDER BY ct.bucket`
	if q.SQL != expectedSelect {
		t.Errorf("\nexpected: %s\ngot:      %s", expectedSelect, q.SQL)
	}

	if len(q.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(q.Args))
	}
	source := q.Args[0].(string)
	if !strings.Contains(source, "create_date > TIMESTAMP '2023-10-15 13:00:00' AND create_date <= TIMESTAMP '2023-10-16 13:00:00'") {
		t.Errorf("expected literal window bounds, got: %s", source)
	}
	if !strings.Contains(source, "ORDER BY 1, 2") {
		t.Errorf("crosstab source must be ordered by row then category, got: %s", source)
	}
	if got := q.Args[1]; got != "VALUES ('DATA_QUERY'), ('TRANSPORT')" {
		t.Errorf("unexpected categories query: %v", got)
	}
}

func TestQuoteLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "'plain'"},
		{"o'brien", "'o''brien'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := quoteLiteral(tt.in); got != tt.want {
			t.Errorf("quoteLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
