package graph

import (
	"testing"

	"github.com/c360studio/semstreams/message"
)

func TestObjectsPreservesSupplyOrder(t *testing.T) {
	idx := NewIndex([]message.Triple{
		{Subject: "ds", Predicate: "p", Object: "first"},
		{Subject: "ds", Predicate: "other", Object: "x"},
		{Subject: "ds", Predicate: "p", Object: "second"},
		{Subject: "ds", Predicate: "p", Object: "third"},
	})

	objs := idx.Objects("ds", "p")
	want := []string{"first", "second", "third"}
	if len(objs) != len(want) {
		t.Fatalf("expected %d objects, got %d", len(want), len(objs))
	}
	for i, w := range want {
		if objs[i] != w {
			t.Errorf("objects[%d] = %q, want %q", i, objs[i], w)
		}
	}
}

func TestObjectReturnsFirstMatch(t *testing.T) {
	idx := NewIndex([]message.Triple{
		{Subject: "ds", Predicate: "p", Object: "first"},
		{Subject: "ds", Predicate: "p", Object: "second"},
	})

	obj, ok := idx.Object("ds", "p")
	if !ok {
		t.Fatal("expected a match")
	}
	if obj != "first" {
		t.Errorf("expected first, got %q", obj)
	}

	if _, ok := idx.Object("ds", "missing"); ok {
		t.Error("expected no match for unknown predicate")
	}
	if _, ok := idx.Object("missing", "p"); ok {
		t.Error("expected no match for unknown subject")
	}
}

func TestHasSubject(t *testing.T) {
	idx := NewIndex([]message.Triple{
		{Subject: "ds", Predicate: "p", Object: "v"},
	})

	if !idx.HasSubject("ds") {
		t.Error("expected ds to be a known subject")
	}
	if idx.HasSubject("v") {
		t.Error("objects are not subjects")
	}
}

func TestHasType(t *testing.T) {
	idx := NewIndex([]message.Triple{
		{Subject: "ds", Predicate: rdfType, Object: "http://www.w3.org/ns/dcat#Dataset"},
		{Subject: "ds", Predicate: rdfType, Object: "http://example.com/Other"},
	})

	if !idx.HasType("ds", "http://www.w3.org/ns/dcat#Dataset") {
		t.Error("expected dataset type declaration to match")
	}
	if !idx.HasType("ds", "http://example.com/Other") {
		t.Error("expected second type declaration to match")
	}
	if idx.HasType("ds", "http://example.com/Unknown") {
		t.Error("unexpected match for undeclared type")
	}
	if idx.HasType("other", "http://www.w3.org/ns/dcat#Dataset") {
		t.Error("unexpected match for unknown subject")
	}
}

func TestObjectNormalization(t *testing.T) {
	tests := []struct {
		name   string
		object any
		want   string
	}{
		{"string", "plain", "plain"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"json number", float64(5), "5"},
		{"fractional", 2.5, "2.5"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex([]message.Triple{
				{Subject: "s", Predicate: "p", Object: tt.object},
			})
			obj, ok := idx.Object("s", "p")
			if !ok {
				t.Fatal("expected object to be indexed")
			}
			if obj != tt.want {
				t.Errorf("got %q, want %q", obj, tt.want)
			}
		})
	}
}

func TestNilObjectsSkipped(t *testing.T) {
	idx := NewIndex([]message.Triple{
		{Subject: "s", Predicate: "p", Object: nil},
		{Subject: "s", Predicate: "p", Object: "kept"},
	})

	objs := idx.Objects("s", "p")
	if len(objs) != 1 || objs[0] != "kept" {
		t.Errorf("expected only the non-nil object, got %v", objs)
	}
	if idx.Len() != 2 {
		t.Errorf("Len counts the full snapshot, got %d", idx.Len())
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := NewIndex(nil)
	if idx.HasSubject("anything") {
		t.Error("empty index has no subjects")
	}
	if objs := idx.Objects("s", "p"); objs != nil {
		t.Errorf("expected nil objects, got %v", objs)
	}
}
