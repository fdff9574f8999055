package emit

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"docorganizer/internal/classify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		typ  classify.SectionType
		want string
	}{
		{classify.TypeEndpoint, "endpoints"},
		{classify.TypeConcept, "concepts"},
		{classify.TypeOverview, "overview"},
		{classify.TypeOther, "overview"},
		{classify.SectionType("unknown"), "overview"},
	}
	for _, c := range cases {
		if got := BucketFor(c.typ); got != c.want {
			t.Errorf("BucketFor(%q) = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestNewWriter_CreatesBuckets(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir, testLogger()); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"endpoints", "concepts", "overview"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("expected bucket directory %q", sub)
		}
	}
}

func TestWrite_PlacesRecordInBucket(t *testing.T) {
	w, err := NewWriter(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	rec := &classify.Record{
		SectionType: classify.TypeEndpoint,
		Filename:    "create-user.md",
		Content:     "# Create User\n\nPOST /users",
	}
	rel, collided, err := w.Write(rec)
	if err != nil {
		t.Fatal(err)
	}
	if collided {
		t.Error("fresh write should not collide")
	}
	if rel != filepath.Join("endpoints", "create-user.md") {
		t.Errorf("unexpected relative path %q", rel)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir(), rel))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != rec.Content {
		t.Errorf("expected content written verbatim, got %q", data)
	}
}

func TestWrite_CollisionGetsSuffix(t *testing.T) {
	w, err := NewWriter(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	first := &classify.Record{SectionType: classify.TypeConcept, Filename: "auth.md", Content: "first"}
	if _, _, err := w.Write(first); err != nil {
		t.Fatal(err)
	}

	second := &classify.Record{SectionType: classify.TypeConcept, Filename: "auth.md", Content: "second"}
	rel, collided, err := w.Write(second)
	if err != nil {
		t.Fatal(err)
	}
	if !collided {
		t.Error("expected collision to be reported")
	}
	if rel != filepath.Join("concepts", "auth-2.md") {
		t.Errorf("expected suffixed name, got %q", rel)
	}

	// The original file is untouched.
	data, _ := os.ReadFile(filepath.Join(w.Dir(), "concepts", "auth.md"))
	if string(data) != "first" {
		t.Errorf("expected original content preserved, got %q", data)
	}

	third := &classify.Record{SectionType: classify.TypeConcept, Filename: "auth.md", Content: "third"}
	rel, _, err = w.Write(third)
	if err != nil {
		t.Fatal(err)
	}
	if rel != filepath.Join("concepts", "auth-3.md") {
		t.Errorf("expected next free suffix, got %q", rel)
	}
}

func TestWrite_SameNameDifferentBucketsNoCollision(t *testing.T) {
	w, err := NewWriter(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	a := &classify.Record{SectionType: classify.TypeEndpoint, Filename: "users.md", Content: "endpoint"}
	b := &classify.Record{SectionType: classify.TypeConcept, Filename: "users.md", Content: "concept"}

	if _, collided, err := w.Write(a); err != nil || collided {
		t.Fatalf("unexpected result: collided=%v err=%v", collided, err)
	}
	if _, collided, err := w.Write(b); err != nil || collided {
		t.Fatalf("buckets are separate namespaces: collided=%v err=%v", collided, err)
	}
}
