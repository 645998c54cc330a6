// Package core provides the lookup and summary logic for the non-filer dataset.
//
// The package holds all domain logic independent of any UI or transport
// layer. The web handlers use it through [Service]; tests use the functions
// directly.
//
// # Data Flow
//
//  1. A visitor's first request creates a [Session] in the [SessionStore].
//  2. [Service.Load] takes a slot from the [LoadLimiter] and asks the
//     [Loader] for a fresh [Table]. The session's previous table is dropped
//     before the download starts.
//  3. [Search], [Summarize] and [ChartData] take the table explicitly. A
//     session with no table yields [ErrNotLoaded].
//
// # Identifiers
//
// The "Registration No." column is parsed into an [Identifier] when the
// table is built. Rows whose value is not 13 digits are kept for name
// searches and summaries but never match an identifier search.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - SES001: Nothing loaded
//   - VAL001-VAL003: Query and parameter validation
//   - LOAD001-LOAD006: Download and parse failures, busy limiter
//   - SUM001: Unexpected gender values under the strict policy
//   - REQ001-REQ002, RATE001: Request cancellation and throttling
package core
