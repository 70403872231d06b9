// Package flatskema provides:
//
// - Schema-driven parsing of flat text files (fixed-width and delimited)
// - Line classification via per-LineType discriminators with declaration-order priority
// - Exhaustive per-cell validation with a stable error model (Issues: line, cell, code)
// - All-lines and streaming entry points with order-preserving concurrent dispatch
//
// Design policy:
//   - Keep only public APIs in the root package; put detailed implementations under internal/.
//   - Place the schema builder under dsl/, document loading under schemafile/,
//     line sources under source/text, and the CLI under cmd/flatskema.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := buildSchema()
//	recs, err := flatskema.ParseAll(ctx, flatskema.ParserConfig{Schema: s, Source: src})
//
//	seq, err := flatskema.Stream(ctx, flatskema.ParserConfig{Schema: s, Source: src, Workers: 4})
//	for res := range seq {
//		// res.Record or res.Issues, in original line order
//	}
package flatskema
