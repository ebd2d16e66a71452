// Package extract talks to the remote intent-extraction service.
//
// The service is an opaque function from raw records, a scenario name and
// an optional prior tree to a proposed intent tree. [Client] implements it
// over HTTP by POSTing a JSON [Request] and decoding the tree in the
// response. [Func] adapts a plain function, which is how tests and offline
// tools supply an extractor.
package extract
