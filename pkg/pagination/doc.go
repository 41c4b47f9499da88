// Package pagination walks page-indexed YUDL listings sequentially.
//
// YUDL export views take a zero-based page query parameter and signal the end
// of data in several ways: an error status, an empty body, an empty JSON
// array, or a record whose key field is the empty string. This package turns
// such a resource into a lazy stream of per-page batches that stops at the
// first of those signals.
//
// Example usage:
//
//	extractor := pagination.NewExtractor(yudlClient, fids.Decoder{}, logger)
//	stream := extractor.Extract(ctx, "https://example.org/fids/audio")
//	for batch := range stream.Batches() {
//		// write batch.Records
//	}
//	log.Info().Str("reason", string(stream.Stop().Reason)).Msg("done")
//
// The stream:
//   - Requests pages 0, 1, 2, ... one at a time, never retrying a page
//   - Checks, in order: transport failure, non-200 status, empty body,
//     malformed JSON, empty payload
//   - Hands records to a Decoder, which may skip a record or mark it as
//     a sentinel that truncates the page and ends the stream
//   - Emits only non-empty batches
package pagination
