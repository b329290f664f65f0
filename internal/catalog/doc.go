// Package catalog implements the Comic Vine search client.
//
// # Request Path
//
// Requests carry the api_key and format=json query parameters and a field_list
// restricted to what the application renders. When proxy prefixes are
// configured, each request is attempted through every proxy in order, with a
// second pass after a short backoff before giving up. Each attempt is bounded
// by its own timeout.
//
// # Rate Limiting
//
// A shared [rate.Limiter] paces all outgoing requests so bursts of suggestion
// fetches stay inside the Comic Vine per-key limits.
//
// # Error Handling
//
//   - [shared.ErrMissingAPIKey] : no api_key configured
//   - [shared.ErrIssueNotFound] : detail fetch for an unknown issue
//   - envelope errors other than "OK" are surfaced verbatim
//
// Responses are tolerant of partial records: name, cover_date, image, and
// volume may all be absent or null.
package catalog
