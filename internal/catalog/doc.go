// Package catalog talks to a numbered, append-only catalog over HTTP and
// tracks its upper bound.
//
// # Overview
//
// The catalog publishes one JSON metadata document per item, addressed by a
// positive integer index, plus a "latest" document whose index is the
// current number of items:
//
//	GET {base}/info.0.json        latest item (its num is the bound)
//	GET {base}/{n}/info.0.json    item n
//
// The default base is https://xkcd.com.
//
// # Components
//
//   - Client: HTTP implementation of Fetcher (FetchLatest, FetchByIndex)
//   - Item: the metadata document with date helpers
//   - State: the last known bound; unknown until observed, never shrinks
//   - Bootstrap: the process-wide first load, shared by concurrent callers
//
// # Error Handling
//
// Client errors fall into four classes, reported by Classify:
//
//   - not_found: HTTP 404 or an index below 1 (ErrNotFound)
//   - http: any other status >= 400 (*HTTPError)
//   - network: the request produced no response (*NetworkError)
//   - decode: the body was not a valid document
//
// Retries, redirects and TLS are left to net/http. The Client applies a
// per-request timeout (10s unless WithTimeout says otherwise).
//
// # Bootstrap
//
// Several viewer instances may start at the same moment before anything is
// known about the catalog. Bootstrap funnels their first loads through a
// singleflight group so exactly one request is issued, memoizes the result
// once it succeeds and lets the next caller retry if it fails. Each instance
// then seeds its own State from the shared result; later "refresh latest"
// fetches update only the caller's State.
package catalog
