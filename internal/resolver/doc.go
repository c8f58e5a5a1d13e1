// Package resolver turns bare identifiers into fully validated values.
//
// An identifier is located through a path template (for example
// "glossary/{id}.yaml"), the file is read, validated against its expected
// shape and decoded. Any identifier lists inside the decoded value are
// resolved the same way before the call returns, so callers never see an
// unresolved reference.
//
// File reads and validation are memoized per path; decoding is repeated on
// every call so each caller receives a fresh value it may mutate. A load
// stack is threaded through every recursive call and turns an accidental
// cycle into a CyclicReference error instead of unbounded recursion.
//
// Markdown-valued fields accept "include:<name>", which is replaced by the
// contents of <name>.md next to the YAML file that contains the field.
package resolver
