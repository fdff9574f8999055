package classify

import (
	"errors"
	"testing"
)

func validRecord() Record {
	return Record{
		SectionType:      TypeEndpoint,
		RelatedEndpoints: []string{"GET /users"},
		Filename:         "get-users.md",
		Content:          "# GET /users\n\nReturns all users.",
	}
}

func TestValidateRecord_ValidPasses(t *testing.T) {
	r := validRecord()
	if err := ValidateRecord(&r, "GET /users"); err != nil {
		t.Errorf("expected valid record to pass, got %v", err)
	}
}

func TestValidateRecord_NilRecord(t *testing.T) {
	if err := ValidateRecord(nil, "x"); err == nil {
		t.Error("expected nil record to fail validation")
	}
}

func TestValidateRecord_InvalidSectionType(t *testing.T) {
	for _, st := range []SectionType{"", "endpoints", "Endpoint", "misc"} {
		r := validRecord()
		r.SectionType = st
		err := ValidateRecord(&r, "x")
		if err == nil {
			t.Errorf("expected section_type %q to fail validation", st)
			continue
		}
		var f *Failure
		if !errors.As(err, &f) || f.Kind != KindError {
			t.Errorf("expected error-kind failure for %q, got %v", st, err)
		}
	}
}

func TestValidateRecord_AllValidSectionTypes(t *testing.T) {
	for _, st := range []SectionType{TypeEndpoint, TypeConcept, TypeOverview, TypeOther} {
		r := validRecord()
		r.SectionType = st
		if err := ValidateRecord(&r, "x"); err != nil {
			t.Errorf("expected section_type %q to pass, got %v", st, err)
		}
	}
}

func TestValidateRecord_EmptyContent(t *testing.T) {
	r := validRecord()
	r.Content = "  \n "
	if err := ValidateRecord(&r, "x"); err == nil {
		t.Error("expected empty content to fail validation")
	}
}

func TestValidateRecord_NormalizesFilename(t *testing.T) {
	r := validRecord()
	r.Filename = "Get Users Endpoint!.md"
	if err := ValidateRecord(&r, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Filename != "get-users-endpoint.md" {
		t.Errorf("expected normalized filename, got %q", r.Filename)
	}
}

func TestValidateRecord_FilenameFallsBackToTitle(t *testing.T) {
	r := validRecord()
	r.Filename = "???"
	if err := ValidateRecord(&r, "Rate Limits"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Filename != "rate-limits.md" {
		t.Errorf("expected fallback filename %q, got %q", "rate-limits.md", r.Filename)
	}
}

func TestNormalizeFilename(t *testing.T) {
	cases := []struct {
		name     string
		fallback string
		want     string
	}{
		{"Intro.md", "", "intro.md"},
		{"GET /users", "", "get-users.md"},
		{"  Spaced  Name  ", "", "spaced-name.md"},
		{"", "Fallback Title", "fallback-title.md"},
		{"", "", "section.md"},
	}
	for _, tc := range cases {
		if got := NormalizeFilename(tc.name, tc.fallback); got != tc.want {
			t.Errorf("NormalizeFilename(%q, %q) = %q, want %q", tc.name, tc.fallback, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"GET /users/{id}", "get-users-id"},
		{"--already--hyphenated--", "already-hyphenated"},
		{"***", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripCodeBlock(t *testing.T) {
	raw := "```json\n{\"a\":1}\n```"
	if got := stripCodeBlock(raw); got != `{"a":1}` {
		t.Errorf("expected fences stripped, got %q", got)
	}
	plain := `{"a":1}`
	if got := stripCodeBlock(plain); got != plain {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}
