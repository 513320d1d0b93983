// Package gmail wraps the Gmail REST API for the triage pipeline: listing
// recent message identifiers, fetching full messages, extracting a plain-text
// body from the MIME part tree, and normalizing it for classification and
// display.
package gmail
