package salad

// Package salad provides the generic runtime behind schema-driven document
// loading:
//
// - A Loader capability tree (primitives, enums, arrays, unions, records,
//   URI resolution, type-DSL and map-shorthand expansion)
// - LoadingOptions as the resolution context (fetcher, base URI, vocabulary,
//   memoization index, provenance logs)
// - Document orchestration for $base/$namespaces/$schemas/$graph and the
//   $import/$include directives
// - Hierarchical ValidationException aggregation with source positions
// - Saveable round-tripping back to document trees
//
// Design policy:
// - Keep the runtime schema-agnostic: concrete record types are described
//   with RecordType values (or a custom RecordMaker) and composed from the
//   New*Loader constructors.
// - Document trees with positions live in doctree/; the CLI under cmd/salad.
//
// Typical usage:
//
//  loader := salad.NewRecordLoader(recordType)
//  v, err := salad.LoadDocument(loader, "file:///work/doc.yaml", "", nil)
//
//  saved := salad.Save(v, true, opts.BaseURI, true)
