// Package batch fans product lookups out over concurrent API requests.
//
// Lookups are sent one request per batch of search items. Batches run in
// parallel up to a concurrency cap and their results are joined back in
// input order, so record i of the output always answers search item i.
//
// Example usage:
//
//	fetcher := batch.NewFetcher(fsfClient, batch.DefaultConfig())
//	records, err := fetcher.FetchAll(ctx, "/probability/depth", search.Batches(items, 100))
//
// The fetcher:
//   - Runs at most MaxConcurrency batches at once
//   - Bounds every batch request by Timeout
//   - Cancels all outstanding batches on the first failure
//   - Returns no partial results
package batch
