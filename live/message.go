// Package live decides whether a notification channel shows a stream going live and
// how many Taiwan-local days have passed since then.
//
// The package has no network dependencies: history is read through the MessageSource
// interface, so the classifier, date helpers and scanner can be tested with plain values.
package live

import "time"

// Message is the subset of a channel message the classifier needs.
type Message struct {
	ID        string
	Timestamp time.Time
	Content   string
	Embeds    []Embed
}

// Embed carries the text fields of one rich-content block. Empty strings mean absent.
type Embed struct {
	Title       string
	Description string
	AuthorName  string
	FooterText  string
}
