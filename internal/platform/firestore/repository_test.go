package firestore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type record struct {
	Owner string
	At    time.Time
}

func recordDoc(id, owner string, at time.Time) Document[record] {
	return Document[record]{ID: id, Data: record{Owner: owner, At: at}}
}

// fallbackRepo wires a BaseRepository whose shaped query fails with the
// given error and whose unshaped full scan returns the given documents.
func fallbackRepo(shapedErr error, scan []Document[record]) (*BaseRepository[record], *int) {
	r := &BaseRepository[record]{collection: "records"}
	scans := 0
	r.runQuery = func(ctx context.Context, build QueryBuilder) ([]Document[record], error) {
		if build != nil {
			return nil, shapedErr
		}
		scans++
		return scan, nil
	}
	return r, &scans
}

func shapedQuery(q firestore.Query) firestore.Query { return q }

func TestQueryWithFallbackFiltersAndSorts(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	scan := []Document[record]{
		recordDoc("old", "alice", base.Add(-time.Hour)),
		recordDoc("other", "bob", base),
		recordDoc("new", "alice", base.Add(time.Hour)),
		recordDoc("untimed", "alice", time.Time{}),
	}
	shapedErr := WrapError("firestore.query records",
		status.Error(codes.FailedPrecondition, "the query requires an index"))
	repo, scans := fallbackRepo(shapedErr, scan)

	docs, err := repo.QueryWithFallback(context.Background(),
		shapedQuery,
		func(doc Document[record]) bool { return doc.Data.Owner == "alice" },
		newestFirst,
	)
	if err != nil {
		t.Fatalf("QueryWithFallback: %v", err)
	}
	if *scans != 1 {
		t.Fatalf("full scans = %d, want 1", *scans)
	}
	got := make([]string, 0, len(docs))
	for _, doc := range docs {
		got = append(got, doc.ID)
	}
	want := []string{"new", "old", "untimed"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestQueryWithFallbackPropagatesOtherErrors(t *testing.T) {
	shapedErr := WrapError("firestore.query records",
		status.Error(codes.PermissionDenied, "missing or insufficient permissions"))
	repo, scans := fallbackRepo(shapedErr, nil)

	_, err := repo.QueryWithFallback(context.Background(),
		shapedQuery, nil, nil)
	if !errors.Is(err, shapedErr) {
		t.Fatalf("err = %v, want the shaped query error", err)
	}
	if *scans != 0 {
		t.Fatalf("full scans = %d, want 0", *scans)
	}
}

func TestQueryWithFallbackPrefersShapedResult(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	shapedDocs := []Document[record]{recordDoc("shaped", "alice", base)}
	repo := &BaseRepository[record]{collection: "records"}
	repo.runQuery = func(ctx context.Context, build QueryBuilder) ([]Document[record], error) {
		if build == nil {
			t.Fatal("unexpected full scan")
		}
		return shapedDocs, nil
	}

	docs, err := repo.QueryWithFallback(context.Background(),
		shapedQuery,
		func(Document[record]) bool { return false },
		nil,
	)
	if err != nil {
		t.Fatalf("QueryWithFallback: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "shaped" {
		t.Fatalf("docs = %v, want the shaped result untouched", docs)
	}
}

func newestFirst(a, b Document[record]) bool {
	if a.Data.At.IsZero() {
		return false
	}
	if b.Data.At.IsZero() {
		return true
	}
	return a.Data.At.After(b.Data.At)
}
