// Package export renders dataset quality assessment graphs as RDF documents.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semscore/vocabulary/dcat"
	"github.com/c360studio/semscore/vocabulary/dqv"
	"github.com/c360studio/semscore/vocabulary/mqa"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:      FormatTurtle,
		MIMEType:  "text/turtle",
		Extension: ".ttl",
	},
	FormatJSONLD: {
		Name:      FormatJSONLD,
		MIMEType:  "application/ld+json",
		Extension: ".jsonld",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Statement is a single subject-predicate-object assertion of an assessment
// graph. Subjects and predicates are full IRIs; objects are IRIs or literals.
type Statement struct {
	Subject   string
	Predicate string
	Object    any
}

// Document is an assessment graph prepared for rendering.
type Document struct {
	DatasetURI string
	Statements []Statement
}

// FromTriples builds a Document from wire triples, preserving their order.
func FromTriples(datasetURI string, triples []message.Triple) Document {
	statements := make([]Statement, len(triples))
	for i, t := range triples {
		statements[i] = Statement{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    t.Object,
		}
	}
	return Document{DatasetURI: datasetURI, Statements: statements}
}

// Render serializes the document to the specified format.
func (d Document) Render(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return d.toTurtle(), nil
	case FormatJSONLD:
		return d.toJSONLD(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// defaultPrefixes returns the namespace prefixes for rendered documents.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"xsd":  "http://www.w3.org/2001/XMLSchema#",
		"dcat": dcat.Namespace,
		"dqv":  dqv.Namespace,
		"mqa":  mqa.Namespace,
	}
}

// sortedPrefixNames returns prefix names in stable order so rendered
// documents are reproducible.
func sortedPrefixNames(prefixes map[string]string) []string {
	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toTurtle serializes to Turtle format, grouping statements by subject in
// first-appearance order.
func (d Document) toTurtle() string {
	var sb strings.Builder

	if d.DatasetURI != "" {
		sb.WriteString(fmt.Sprintf("# Quality assessment graph for %s\n", d.DatasetURI))
	}

	prefixes := defaultPrefixes()
	for _, name := range sortedPrefixNames(prefixes) {
		sb.WriteString(fmt.Sprintf("@prefix %s: <%s> .\n", name, prefixes[name]))
	}
	sb.WriteString("\n")

	for _, subject := range d.subjects() {
		d.writeSubjectTurtle(&sb, subject)
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeSubjectTurtle writes a single subject block in Turtle format.
func (d Document) writeSubjectTurtle(sb *strings.Builder, subject string) {
	statements := d.statementsFor(subject)

	sb.WriteString(fmt.Sprintf("<%s>\n", subject))
	for i, st := range statements {
		var line string
		if st.Predicate == dcat.RDFType {
			if iri, ok := st.Object.(string); ok {
				line = fmt.Sprintf("    a <%s>", iri)
			}
		}
		if line == "" {
			line = fmt.Sprintf("    <%s> %s", st.Predicate, formatObject(st.Object))
		}
		sb.WriteString(line)
		if i < len(statements)-1 {
			sb.WriteString(" ;\n")
		} else {
			sb.WriteString(" .\n")
		}
	}
}

// toJSONLD serializes to JSON-LD format with a prefix context and one graph
// node per subject.
func (d Document) toJSONLD() string {
	var sb strings.Builder

	sb.WriteString("{\n")
	sb.WriteString("  \"@context\": {\n")

	prefixes := defaultPrefixes()
	names := sortedPrefixNames(prefixes)
	for i, name := range names {
		sb.WriteString(fmt.Sprintf("    \"%s\": \"%s\"", name, prefixes[name]))
		if i < len(names)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  },\n")
	sb.WriteString("  \"@graph\": [\n")

	subjects := d.subjects()
	for i, subject := range subjects {
		d.writeSubjectJSONLD(&sb, subject)
		if i < len(subjects)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("  ]\n")
	sb.WriteString("}\n")

	return sb.String()
}

// writeSubjectJSONLD writes a single subject node in JSON-LD format.
// rdf:type statements collapse into "@type"; repeated predicates collapse
// into arrays so the output stays valid JSON.
func (d Document) writeSubjectJSONLD(sb *strings.Builder, subject string) {
	statements := d.statementsFor(subject)

	var types []string
	var predicateOrder []string
	objects := make(map[string][]any)
	for _, st := range statements {
		if st.Predicate == dcat.RDFType {
			if iri, ok := st.Object.(string); ok {
				types = append(types, iri)
				continue
			}
		}
		if _, seen := objects[st.Predicate]; !seen {
			predicateOrder = append(predicateOrder, st.Predicate)
		}
		objects[st.Predicate] = append(objects[st.Predicate], st.Object)
	}

	sb.WriteString("    {\n")
	sb.WriteString(fmt.Sprintf("      \"@id\": \"%s\"", escapeString(subject)))

	if len(types) > 0 {
		sb.WriteString(",\n      \"@type\": [")
		for i, t := range types {
			sb.WriteString(fmt.Sprintf("\"%s\"", escapeString(t)))
			if i < len(types)-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("]")
	}

	for _, predicate := range predicateOrder {
		sb.WriteString(",\n")
		values := objects[predicate]
		if len(values) == 1 {
			sb.WriteString(fmt.Sprintf("      \"%s\": %s", escapeString(predicate), formatObjectJSONLD(values[0])))
			continue
		}
		sb.WriteString(fmt.Sprintf("      \"%s\": [", escapeString(predicate)))
		for i, v := range values {
			sb.WriteString(formatObjectJSONLD(v))
			if i < len(values)-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("]")
	}

	sb.WriteString("\n    }")
}

// subjects returns distinct subjects in first-appearance order.
func (d Document) subjects() []string {
	seen := make(map[string]bool)
	var order []string
	for _, st := range d.Statements {
		if !seen[st.Subject] {
			seen[st.Subject] = true
			order = append(order, st.Subject)
		}
	}
	return order
}

// statementsFor returns the statements with the given subject, in order.
func (d Document) statementsFor(subject string) []Statement {
	var out []Statement
	for _, st := range d.Statements {
		if st.Subject == subject {
			out = append(out, st)
		}
	}
	return out
}

// formatObject formats an object value for Turtle output.
func formatObject(obj any) string {
	switch v := obj.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return fmt.Sprintf("<%s>", v)
		}
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return fmt.Sprintf("\"%s\"^^xsd:dateTime", v)
		}
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^xsd:integer", v)
	case float32, float64:
		return fmt.Sprintf("\"%f\"^^xsd:decimal", v)
	case bool:
		return fmt.Sprintf("\"%t\"^^xsd:boolean", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// formatObjectJSONLD formats an object value for JSON-LD output.
func formatObjectJSONLD(obj any) string {
	switch v := obj.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return fmt.Sprintf("{\"@id\": \"%s\"}", escapeString(v))
		}
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			return fmt.Sprintf("{\"@value\": \"%s\", \"@type\": \"xsd:dateTime\"}", v)
		}
		return fmt.Sprintf("\"%s\"", escapeString(v))
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
