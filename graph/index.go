// Package graph provides an indexed, read-only view over semantic triples
// for fixed-shape traversals. An Index answers "given a subject and a
// predicate, which objects are attached" without requiring a full triple
// store; any component that can hand over a triple slice can be walked.
package graph

import (
	"fmt"
	"strconv"

	"github.com/c360studio/semstreams/message"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Index is an immutable subject/predicate lookup over a triple snapshot.
// Object order under one (subject, predicate) pair follows the order the
// triples were supplied in; callers must not rely on it for correctness,
// only for deterministic output.
type Index struct {
	triples []message.Triple
	objects map[string]map[string][]string
}

// NewIndex builds an Index from a triple snapshot. Triples whose object
// cannot be rendered as a string (nil objects) are skipped.
func NewIndex(triples []message.Triple) *Index {
	idx := &Index{
		triples: triples,
		objects: make(map[string]map[string][]string),
	}

	for _, t := range triples {
		obj, ok := objectString(t.Object)
		if !ok {
			continue
		}
		preds, found := idx.objects[t.Subject]
		if !found {
			preds = make(map[string][]string)
			idx.objects[t.Subject] = preds
		}
		preds[t.Predicate] = append(preds[t.Predicate], obj)
	}

	return idx
}

// Objects returns every object attached to subject via predicate, in
// supply order. The returned slice is shared with the index; callers must
// not mutate it.
func (idx *Index) Objects(subject, predicate string) []string {
	preds, ok := idx.objects[subject]
	if !ok {
		return nil
	}
	return preds[predicate]
}

// Object returns the first object attached to subject via predicate.
func (idx *Index) Object(subject, predicate string) (string, bool) {
	objs := idx.Objects(subject, predicate)
	if len(objs) == 0 {
		return "", false
	}
	return objs[0], true
}

// HasSubject reports whether the subject appears in any indexed triple.
func (idx *Index) HasSubject(subject string) bool {
	_, ok := idx.objects[subject]
	return ok
}

// HasType reports whether the subject carries an rdf:type declaration for
// the given class IRI.
func (idx *Index) HasType(subject, classIRI string) bool {
	for _, obj := range idx.Objects(subject, rdfType) {
		if obj == classIRI {
			return true
		}
	}
	return false
}

// Len returns the number of indexed triples, including skipped ones.
func (idx *Index) Len() int {
	return len(idx.triples)
}

// Triples returns the underlying snapshot. The slice is shared with the
// index; callers must not mutate it.
func (idx *Index) Triples() []message.Triple {
	return idx.triples
}

// objectString renders a wire object value as a string. JSON decoding
// delivers numbers as float64, so integral floats are rendered without a
// fractional part.
func objectString(obj any) (string, bool) {
	switch v := obj.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", v), true
	}
}
