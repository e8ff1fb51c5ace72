// Package scraper fetches basketball-reference pages over HTTP and parses
// them into goquery documents.
//
// A Fetcher sends one GET per call with a fixed User-Agent and a client
// timeout, rejects non-200 responses with a StatusError, and optionally
// strips HTML comment markers so that tables shipped inside comments
// become part of the parsed tree.
package scraper
