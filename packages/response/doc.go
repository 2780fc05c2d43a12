// Package response holds a captured HTTP response and the assertions made
// against it.
//
// A Snapshot parses its JSON body once, at construction. Callers register
// named predicates with Test and check the body against JSON Schemas with
// Schema; both calls chain. Assert, AssertAll and AssertSchema turn recorded
// outcomes into errors:
//
//	snap, err := response.New(capture)
//	if err != nil {
//		return err
//	}
//	snap.
//		Test("two products", func(body response.Value) (bool, error) {
//			n, err := body.Get("products").Len()
//			return n == 2, err
//		}).
//		Schema(productSchema)
//	if err := snap.Err(); err != nil {
//		return err
//	}
//	return snap.AssertAll()
//
// A predicate that returns an error or panics records a failed outcome; the
// error itself never escapes Test.
package response
