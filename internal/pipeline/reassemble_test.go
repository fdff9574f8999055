package pipeline

import (
	"reflect"
	"testing"

	"docorganizer/internal/classify"
)

func TestMergeRecords_Empty(t *testing.T) {
	if MergeRecords(nil) != nil {
		t.Error("expected nil for no records")
	}
}

func TestMergeRecords_FirstRecordWins(t *testing.T) {
	merged := MergeRecords([]*classify.Record{
		{SectionType: classify.TypeEndpoint, Filename: "create-user.md", Content: "part one"},
		{SectionType: classify.TypeConcept, Filename: "something-else.md", Content: "part two"},
	})

	if merged.SectionType != classify.TypeEndpoint {
		t.Errorf("expected first record's type, got %q", merged.SectionType)
	}
	if merged.Filename != "create-user.md" {
		t.Errorf("expected first record's filename, got %q", merged.Filename)
	}
	if merged.Content != "part one\n\npart two" {
		t.Errorf("expected contents concatenated in order, got %q", merged.Content)
	}
}

func TestMergeRecords_EndpointUnion(t *testing.T) {
	merged := MergeRecords([]*classify.Record{
		{RelatedEndpoints: []string{"/users", "/orders"}},
		{RelatedEndpoints: []string{"/orders", "/items"}},
		{RelatedEndpoints: []string{"/payments"}},
	})

	want := []string{"/users", "/orders", "/items", "/payments"}
	if !reflect.DeepEqual(merged.RelatedEndpoints, want) {
		t.Errorf("expected union in first-seen order %v, got %v", want, merged.RelatedEndpoints)
	}
}

func TestMergeRecords_SkipsEmptyContent(t *testing.T) {
	merged := MergeRecords([]*classify.Record{
		{Content: "alpha"},
		{Content: "   "},
		{Content: "beta"},
	})
	if merged.Content != "alpha\n\nbeta" {
		t.Errorf("expected blank content skipped, got %q", merged.Content)
	}
}

func TestMergeRecords_NilEndpointsSafe(t *testing.T) {
	merged := MergeRecords([]*classify.Record{
		{Content: "only", RelatedEndpoints: nil},
	})
	if merged.RelatedEndpoints == nil {
		t.Error("expected non-nil related endpoints")
	}
	if len(merged.RelatedEndpoints) != 0 {
		t.Errorf("expected empty union, got %v", merged.RelatedEndpoints)
	}
}
