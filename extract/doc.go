// Package extract normalizes heterogeneous content sources into plain text
// plus provenance metadata.
//
// Sources form a closed variant set (PDFSource, TextSource, WebsiteSource)
// dispatched by a single exhaustive switch in Extractor.Extract. Failures
// are reported as *Error with a Kind of ParseError (undecodable payloads)
// or FetchError (unreachable or non-2xx websites); URL validation happens
// in NewWebsiteSource before any network activity.
package extract
