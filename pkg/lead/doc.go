// Package lead extracts contact details the chat model embeds in its reply.
//
// Once a visitor confirms their details, the model writes the literal
// Marker followed by a single line:
//
//	[LEAD_INFO_COLLECTED] FirstName: Jane, LastName: Doe, Email: jane@x.com, Phone: N/A, Message: Loved your site, call me.
//
// Every value except Message stops at a comma. Message runs to the end of
// the response and may contain commas, colons and newlines.
//
// # Strategies
//
// Parsing is total and tries, in order:
//
//  1. The structured field pattern (TierStructured).
//  2. A comma-split fallback tolerant of reordered or lower-cased keys
//     (TierSplit).
//  3. A degraded record that quotes the raw response in Message and labels
//     the inquiry as a parsing error (TierDegraded).
//
// Canonical fields the model left out are set to NotProvided. The Tier on
// the Result lets callers log and count how each lead was recovered.
package lead
