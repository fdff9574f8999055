package section

import (
	"reflect"
	"strings"
	"testing"
)

func buildTree() *Section {
	root := NewRoot()

	api := &Section{Title: "API", Level: 1}
	root.AddChild(api)

	users := &Section{Title: "GET /users", Level: 2}
	users.AddContent("desc")
	api.AddChild(users)

	orders := &Section{Title: "GET /orders", Level: 2}
	orders.AddContent("order listing")
	api.AddChild(orders)

	return root
}

func TestFlatten_AncestorIncludesDescendants(t *testing.T) {
	flats := Flatten(buildTree())

	if len(flats) != 3 {
		t.Fatalf("expected 3 flat sections, got %d", len(flats))
	}

	api := flats[0]
	if api.Title != "API" {
		t.Fatalf("expected first section %q, got %q", "API", api.Title)
	}
	// The ancestor's rendering must contain the nested heading and its body.
	if !strings.Contains(api.Content, "## GET /users") {
		t.Errorf("expected ancestor content to contain nested heading, got %q", api.Content)
	}
	if !strings.Contains(api.Content, "desc") {
		t.Errorf("expected ancestor content to contain nested body, got %q", api.Content)
	}

	users := flats[1]
	if users.Title != "GET /users" {
		t.Fatalf("expected second section %q, got %q", "GET /users", users.Title)
	}
	// A child's rendering must not include sibling content.
	if strings.Contains(users.Content, "order listing") {
		t.Errorf("child content leaked sibling text: %q", users.Content)
	}
}

func TestFlatten_Breadcrumbs(t *testing.T) {
	flats := Flatten(buildTree())

	want := []string{"API", "GET /users"}
	if !reflect.DeepEqual(flats[1].Breadcrumbs, want) {
		t.Errorf("expected breadcrumbs %v, got %v", want, flats[1].Breadcrumbs)
	}
	if !reflect.DeepEqual(flats[0].Breadcrumbs, []string{"API"}) {
		t.Errorf("expected breadcrumbs [API], got %v", flats[0].Breadcrumbs)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	tree := buildTree()

	a := Flatten(tree)
	b := Flatten(tree)

	if len(a) != len(b) {
		t.Fatalf("flatten length changed between runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Content != b[i].Content {
			t.Errorf("section %d content differs between runs", i)
		}
	}
}

func TestFlatten_EmptyTreeYieldsNothing(t *testing.T) {
	root := NewRoot()
	root.AddContent("orphan text with no home section")

	if flats := Flatten(root); len(flats) != 0 {
		t.Errorf("expected no flat sections, got %d", len(flats))
	}
}

func TestFlatten_SkipsBodylessSections(t *testing.T) {
	root := NewRoot()

	empty := &Section{Title: "Empty Chapter", Level: 1}
	root.AddChild(empty)

	full := &Section{Title: "Full Chapter", Level: 1}
	full.AddContent("text")
	root.AddChild(full)

	untitled := &Section{Level: 1}
	untitled.AddContent("stray")
	root.AddChild(untitled)

	flats := Flatten(root)
	if len(flats) != 1 {
		t.Fatalf("expected 1 flat section, got %d", len(flats))
	}
	if flats[0].Title != "Full Chapter" {
		t.Errorf("expected %q, got %q", "Full Chapter", flats[0].Title)
	}
}

func TestFlatten_ParentWithOnlyDescendantContentIsKept(t *testing.T) {
	root := NewRoot()

	parent := &Section{Title: "Guide", Level: 1}
	root.AddChild(parent)

	child := &Section{Title: "Setup", Level: 2}
	child.AddContent("install it")
	parent.AddChild(child)

	flats := Flatten(root)
	if len(flats) != 2 {
		t.Fatalf("expected 2 flat sections, got %d", len(flats))
	}
	if flats[0].Title != "Guide" {
		t.Errorf("expected parent first, got %q", flats[0].Title)
	}
}

func TestFullContent_SingleBlankLineJoins(t *testing.T) {
	s := &Section{Title: "Intro", Level: 1}
	s.AddContent("first block")
	s.AddContent("second block")

	want := "# Intro\n\nfirst block\n\nsecond block"
	if got := s.FullContent(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAddContent_IgnoresBlankBlocks(t *testing.T) {
	s := &Section{Title: "T", Level: 1}
	s.AddContent("  \n ")
	s.AddContent("")
	if len(s.Content) != 0 {
		t.Errorf("expected blank blocks to be dropped, got %v", s.Content)
	}
}
