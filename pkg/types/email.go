package types

import "time"

// Message represents an email message. UID is assigned by the IMAP server and
// is only unique within a single folder for the lifetime of a session; moving
// a message assigns it a new UID in the destination folder.
type Message struct {
	UID            uint32       `json:"uid"`
	From           string       `json:"from"`
	To             []string     `json:"to"`
	Cc             []string     `json:"cc,omitempty"`
	Subject        string       `json:"subject"`
	Body           string       `json:"body"`
	IsHTML         bool         `json:"is_html"`
	Preview        string       `json:"preview"`
	Date           time.Time    `json:"date"`
	Folder         string       `json:"folder"`
	IsRead         bool         `json:"is_read"`
	IsStarred      bool         `json:"is_starred"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

// Attachment describes a single message attachment. Content is populated only
// on a full-detail fetch and stripped from list/search views.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	ContentID   string `json:"content_id,omitempty"`
	Content     []byte `json:"content,omitempty"`
}

// View returns a copy of the message suitable for list and search results:
// the body is replaced by the truncated preview and attachment content is
// stripped so only the descriptors remain.
func (m *Message) View() *Message {
	v := *m
	v.Body = m.Preview
	if len(m.Attachments) > 0 {
		v.Attachments = make([]Attachment, len(m.Attachments))
		for i, a := range m.Attachments {
			a.Content = nil
			v.Attachments[i] = a
		}
	}
	return &v
}

// Folder represents a mailbox folder.
type Folder struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Total      int    `json:"total"`
	Unread     int    `json:"unread"`
	SpecialUse string `json:"special_use,omitempty"`
}

// Contact is an aggregate derived from the current message snapshot.
// EmailsReceived counts messages this address sent to us; EmailsSent counts
// messages we addressed to it.
type Contact struct {
	Email            string    `json:"email"`
	EmailsSent       int       `json:"emails_sent"`
	EmailsReceived   int       `json:"emails_received"`
	FirstInteraction time.Time `json:"first_interaction"`
	LastInteraction  time.Time `json:"last_interaction"`
}

// EmailStats is the cached statistics aggregate over the current snapshot.
type EmailStats struct {
	TotalEmails       int       `json:"total_emails"`
	UnreadEmails      int       `json:"unread_emails"`
	StarredEmails     int       `json:"starred_emails"`
	TotalFolders      int       `json:"total_folders"`
	TotalContacts     int       `json:"total_contacts"`
	AvgEmailsPerDay   int       `json:"avg_emails_per_day"`
	MostActiveContact string    `json:"most_active_contact"`
	MostUsedFolder    string    `json:"most_used_folder"`
	StorageUsedMB     float64   `json:"storage_used_mb"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// TrendPoint is one day in a volume trend. Sent is always zero: the engine
// attributes every message in the window to "received" regardless of
// direction, matching the reference behavior.
type TrendPoint struct {
	Date     string `json:"date"`
	Received int    `json:"received"`
	Sent     int    `json:"sent"`
}

// ContactActivity ranks a contact by interaction count.
type ContactActivity struct {
	Email           string    `json:"email"`
	Count           int       `json:"count"`
	LastInteraction time.Time `json:"last_interaction"`
}

// ResponseTimeStats is a placeholder block pending real reply-latency
// measurement.
type ResponseTimeStats struct {
	AverageHours float64 `json:"average_hours"`
	MedianHours  float64 `json:"median_hours"`
	Note         string  `json:"note"`
}

// HourActivity is one bucket of the hourly activity histogram.
type HourActivity struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TypeCount counts attachments of one coarse content-type category.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// AttachmentStats aggregates attachment descriptors across the snapshot.
type AttachmentStats struct {
	TotalCount  int         `json:"total_count"`
	TotalSizeMB float64     `json:"total_size_mb"`
	AvgSizeMB   float64     `json:"avg_size_mb"`
	CommonTypes []TypeCount `json:"common_types"`
}

// EmailAnalytics is the cached analytics aggregate over the current snapshot.
type EmailAnalytics struct {
	VolumeTrend    []TrendPoint      `json:"volume_trend"`
	TopSenders     []ContactActivity `json:"top_senders"`
	TopRecipients  []ContactActivity `json:"top_recipients"`
	ResponseTime   ResponseTimeStats `json:"response_time"`
	HourlyActivity []HourActivity    `json:"hourly_activity"`
	Attachments    AttachmentStats   `json:"attachments"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// BulkResult aggregates the outcome of a bulk move or delete.
type BulkResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// ConnectionStatus reports the mailbox session state.
type ConnectionStatus struct {
	State     string    `json:"state"`
	Connected bool      `json:"connected"`
	Host      string    `json:"host"`
	LastError string    `json:"last_error,omitempty"`
	Since     time.Time `json:"since"`
}

// LogEntry is one record in the bounded in-memory log buffer.
type LogEntry struct {
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Time      time.Time              `json:"time"`
}
