// Package provider fetches and decodes FotMob data for Pitchside.
//
// Every call goes through one Client that applies a request timeout, a
// circuit breaker and request de-duplication. Failures are returned as
// *FetchError values that carry the operation, the target id and a short
// preview of any payload that failed to decode.
//
// Decoders are field-tolerant. Fields whose type varies across endpoints
// (ids as numbers or strings, team names as strings or objects) go through
// the flex* types, and list items are decoded one at a time so a single bad
// item is skipped instead of failing the whole response. The live-ticker
// decoder goes further and reports a structural failure together with the
// entries read before it; see DecodeCommentary.
package provider
