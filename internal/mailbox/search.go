package mailbox

import (
	"time"

	"github.com/emersion/go-imap"
)

// SearchOptions is a structured search filter. Zero-valued fields are
// ignored; pointer fields distinguish "unset" from "false". Folder defaults
// to INBOX and Limit to the configured search result limit.
type SearchOptions struct {
	Folder    string
	Sender    string
	Recipient string
	Subject   string
	Since     time.Time
	Before    time.Time
	Seen      *bool
	Starred   *bool
	Limit     int
}

// Criteria translates the options into the provider's native search
// predicate.
func (o *SearchOptions) Criteria() *imap.SearchCriteria {
	c := imap.NewSearchCriteria()
	if o.Sender != "" {
		c.Header.Add("From", o.Sender)
	}
	if o.Recipient != "" {
		c.Header.Add("To", o.Recipient)
	}
	if o.Subject != "" {
		c.Header.Add("Subject", o.Subject)
	}
	if !o.Since.IsZero() {
		c.Since = o.Since
	}
	if !o.Before.IsZero() {
		c.Before = o.Before
	}
	if o.Seen != nil {
		if *o.Seen {
			c.WithFlags = append(c.WithFlags, imap.SeenFlag)
		} else {
			c.WithoutFlags = append(c.WithoutFlags, imap.SeenFlag)
		}
	}
	if o.Starred != nil {
		if *o.Starred {
			c.WithFlags = append(c.WithFlags, imap.FlaggedFlag)
		} else {
			c.WithoutFlags = append(c.WithoutFlags, imap.FlaggedFlag)
		}
	}
	return c
}
