package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semscore/export"
	"github.com/c360studio/semscore/vocabulary/dcat"
	"github.com/c360studio/semscore/vocabulary/dqv"
	"github.com/c360studio/semscore/vocabulary/mqa"
)

const (
	testDataset     = "https://data.example.org/datasets/coastal-water"
	testDimension   = "https://data.example.org/quality/accessibility"
	testMeasurement = "https://data.example.org/quality/accessibility/m1"
	testMetric      = mqa.Namespace + "downloadUrlAvailability"
)

func assessmentDocument() export.Document {
	return export.FromTriples(testDataset, []message.Triple{
		{Subject: testDataset, Predicate: dcat.RDFType, Object: dcat.ClassDataset},
		{Subject: testDataset, Predicate: dqv.PropInDimension, Object: testDimension},
		{Subject: testDimension, Predicate: dqv.PropHasQualityMeasurement, Object: testMeasurement},
		{Subject: testMeasurement, Predicate: dqv.PropIsMeasurementOf, Object: testMetric},
		{Subject: testMeasurement, Predicate: mqa.PropScore, Object: 20},
	})
}

func TestFromTriples(t *testing.T) {
	doc := assessmentDocument()

	if doc.DatasetURI != testDataset {
		t.Errorf("expected dataset URI %s, got %s", testDataset, doc.DatasetURI)
	}
	if len(doc.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(doc.Statements))
	}
	if doc.Statements[0].Subject != testDataset {
		t.Errorf("statement order not preserved: %+v", doc.Statements[0])
	}
}

func TestRenderTurtle(t *testing.T) {
	doc := assessmentDocument()

	output, err := doc.Render(export.FormatTurtle)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(output, "# Quality assessment graph for "+testDataset) {
		t.Error("Turtle output should carry the dataset header comment")
	}
	if !strings.Contains(output, "@prefix dqv: <"+dqv.Namespace+"> .") {
		t.Error("Turtle output should declare the dqv prefix")
	}
	if !strings.Contains(output, "@prefix mqa: <"+mqa.Namespace+"> .") {
		t.Error("Turtle output should declare the mqa prefix")
	}
	if !strings.Contains(output, "a <"+dcat.ClassDataset+">") {
		t.Error("Turtle output should use the 'a' shorthand for rdf:type")
	}
	if !strings.Contains(output, "<"+dqv.PropInDimension+"> <"+testDimension+">") {
		t.Error("Turtle output should render IRI objects in angle brackets")
	}
	if !strings.Contains(output, `"20"^^xsd:integer`) {
		t.Error("Turtle output should render integer literals with xsd:integer")
	}
}

func TestRenderTurtleLiterals(t *testing.T) {
	doc := export.Document{
		Statements: []export.Statement{
			{Subject: testDataset, Predicate: "https://example.org/label", Object: `say "hi"`},
			{Subject: testDataset, Predicate: "https://example.org/checked", Object: "2025-01-28T10:30:00Z"},
			{Subject: testDataset, Predicate: "https://example.org/open", Object: true},
		},
	}

	output, err := doc.Render(export.FormatTurtle)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(output, `"say \"hi\""`) {
		t.Error("Turtle output should escape quotes in literals")
	}
	if !strings.Contains(output, `"2025-01-28T10:30:00Z"^^xsd:dateTime`) {
		t.Error("Turtle output should type RFC3339 strings as xsd:dateTime")
	}
	if !strings.Contains(output, `"true"^^xsd:boolean`) {
		t.Error("Turtle output should type booleans as xsd:boolean")
	}
}

func TestRenderJSONLD(t *testing.T) {
	doc := assessmentDocument()

	output, err := doc.Render(export.FormatJSONLD)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("JSON-LD output is not valid JSON: %v", err)
	}
	if _, ok := parsed["@context"]; !ok {
		t.Error("JSON-LD output should contain @context")
	}

	graph, ok := parsed["@graph"].([]any)
	if !ok {
		t.Fatal("JSON-LD output should contain a @graph array")
	}
	if len(graph) != 3 {
		t.Fatalf("expected 3 graph nodes, got %d", len(graph))
	}

	first, ok := graph[0].(map[string]any)
	if !ok {
		t.Fatal("graph nodes should be objects")
	}
	if first["@id"] != testDataset {
		t.Errorf("expected first node @id %s, got %v", testDataset, first["@id"])
	}
	types, ok := first["@type"].([]any)
	if !ok || len(types) != 1 || types[0] != dcat.ClassDataset {
		t.Errorf("expected @type [%s], got %v", dcat.ClassDataset, first["@type"])
	}
}

func TestRenderJSONLDRepeatedPredicates(t *testing.T) {
	doc := export.FromTriples(testDataset, []message.Triple{
		{Subject: testDimension, Predicate: dqv.PropHasQualityMeasurement, Object: testMeasurement},
		{Subject: testDimension, Predicate: dqv.PropHasQualityMeasurement, Object: testMeasurement + "-2"},
	})

	output, err := doc.Render(export.FormatJSONLD)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("JSON-LD output is not valid JSON: %v", err)
	}

	graph := parsed["@graph"].([]any)
	node := graph[0].(map[string]any)
	values, ok := node[dqv.PropHasQualityMeasurement].([]any)
	if !ok {
		t.Fatalf("repeated predicate should render as an array, got %v", node[dqv.PropHasQualityMeasurement])
	}
	if len(values) != 2 {
		t.Errorf("expected 2 measurement references, got %d", len(values))
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	doc := assessmentDocument()

	if _, err := doc.Render("ntriples"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := export.GetFormatInfo(export.FormatTurtle)
	if !ok {
		t.Fatal("expected turtle format info")
	}
	if info.MIMEType != "text/turtle" {
		t.Errorf("unexpected MIME type: %s", info.MIMEType)
	}

	if _, ok := export.GetFormatInfo("rdfxml"); ok {
		t.Error("expected no info for unknown format")
	}
}
