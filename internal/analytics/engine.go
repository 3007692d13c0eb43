package analytics

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/util"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// cacheValidity is the shared freshness window for both derived aggregates.
const cacheValidity = 5 * time.Minute

const (
	trendDays       = 30
	topContacts     = 10
	topHours        = 10
	topTypes        = 5
	defaultContacts = 100
)

// Engine derives statistics, a contact graph and trends from the last message
// snapshot it was handed. It has no notion of "the mailbox": every
// UpdateEmails call wholesale-replaces its state and recomputes the contact
// map; the two aggregate caches share one freshness timer.
type Engine struct {
	log *logrus.Entry
	now func() time.Time

	mu        sync.Mutex
	messages  []*types.Message
	contacts  map[string]*types.Contact
	stats     *types.EmailStats
	analytics *types.EmailAnalytics
	updatedAt time.Time
}

// NewEngine creates an empty engine.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		log:      logger.WithField("component", "analytics"),
		now:      time.Now,
		contacts: make(map[string]*types.Contact),
	}
}

// UpdateEmails replaces the snapshot, invalidates both aggregate caches and
// rebuilds the contact map in a single pass. The sender of each message
// contributes a "received" interaction, every recipient a "sent" one, keyed
// by the bare address.
func (e *Engine) UpdateEmails(messages []*types.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.messages = messages
	e.stats = nil
	e.analytics = nil
	e.updatedAt = e.now()

	e.contacts = make(map[string]*types.Contact)
	for _, m := range messages {
		if sender := util.ExtractEmailAddress(m.From); sender != "" {
			c := e.contact(sender, m.Date)
			c.EmailsReceived++
			e.widen(c, m.Date)
		}
		for _, rcpt := range m.To {
			if addr := util.ExtractEmailAddress(rcpt); addr != "" {
				c := e.contact(addr, m.Date)
				c.EmailsSent++
				e.widen(c, m.Date)
			}
		}
	}
	e.log.WithFields(logrus.Fields{
		"messages": len(messages),
		"contacts": len(e.contacts),
	}).Debug("Snapshot replaced")
}

func (e *Engine) contact(addr string, date time.Time) *types.Contact {
	key := strings.ToLower(addr)
	c, ok := e.contacts[key]
	if !ok {
		c = &types.Contact{
			Email:            key,
			FirstInteraction: date,
			LastInteraction:  date,
		}
		e.contacts[key] = c
	}
	return c
}

// widen grows a contact's interaction span monotonically.
func (e *Engine) widen(c *types.Contact, date time.Time) {
	if date.Before(c.FirstInteraction) {
		c.FirstInteraction = date
	}
	if date.After(c.LastInteraction) {
		c.LastInteraction = date
	}
}

// Fresh reports whether the snapshot is recent enough that callers can skip
// re-fetching before reading aggregates.
func (e *Engine) Fresh() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.updatedAt.IsZero() && e.now().Sub(e.updatedAt) < cacheValidity
}

// cacheValid reports whether a cached aggregate computed for the current
// snapshot is still inside the shared validity window.
func (e *Engine) cacheValid() bool {
	return !e.updatedAt.IsZero() && e.now().Sub(e.updatedAt) < cacheValidity
}

// EmailStats returns the statistics aggregate, recomputing when the cached
// copy is older than the validity window.
func (e *Engine) EmailStats() *types.EmailStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stats != nil && e.cacheValid() {
		return e.stats
	}

	stats := &types.EmailStats{
		TotalEmails:       len(e.messages),
		TotalContacts:     len(e.contacts),
		MostActiveContact: "N/A",
		MostUsedFolder:    "INBOX",
		GeneratedAt:       e.now(),
	}

	folders := make(map[string]int)
	var oldest, newest time.Time
	var storageBytes int64
	for _, m := range e.messages {
		if !m.IsRead {
			stats.UnreadEmails++
		}
		if m.IsStarred {
			stats.StarredEmails++
		}
		folders[m.Folder]++
		if oldest.IsZero() || m.Date.Before(oldest) {
			oldest = m.Date
		}
		if newest.IsZero() || m.Date.After(newest) {
			newest = m.Date
		}
		storageBytes += int64(len(m.Body))
		for _, a := range m.Attachments {
			storageBytes += int64(a.Size)
		}
	}
	stats.TotalFolders = len(folders)

	if len(e.messages) > 0 {
		days := int(newest.Sub(oldest).Hours() / 24)
		if days < 1 {
			days = 1
		}
		stats.AvgEmailsPerDay = int(math.Round(float64(len(e.messages)) / float64(days)))
	}

	best := 0
	for path, count := range folders {
		if count > best || (count == best && best > 0 && path < stats.MostUsedFolder) {
			best = count
			stats.MostUsedFolder = path
		}
	}

	if top := e.rankedContacts(); len(top) > 0 {
		stats.MostActiveContact = top[0].Email
	}

	stats.StorageUsedMB = roundMB(float64(storageBytes))

	e.stats = stats
	return stats
}

// EmailAnalytics returns the analytics aggregate, with the same validity
// rule as EmailStats but an independent cache slot.
func (e *Engine) EmailAnalytics() *types.EmailAnalytics {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.analytics != nil && e.cacheValid() {
		return e.analytics
	}

	a := &types.EmailAnalytics{
		VolumeTrend:   e.trend(trendDays),
		TopSenders:    e.topBy(func(c *types.Contact) int { return c.EmailsReceived }),
		TopRecipients: e.topBy(func(c *types.Contact) int { return c.EmailsSent }),
		ResponseTime: types.ResponseTimeStats{
			AverageHours: 4.5,
			MedianHours:  2.0,
			Note:         "static estimate; reply-chain measurement not implemented",
		},
		HourlyActivity: e.hourly(),
		Attachments:    e.attachmentStats(),
		GeneratedAt:    e.now(),
	}

	e.analytics = a
	return a
}

// trend builds the day-by-day volume over a trailing window anchored at the
// current moment, oldest first, with every day present. All volume is
// attributed to "received": the engine does not distinguish direction by
// folder, and that simplification is preserved deliberately.
func (e *Engine) trend(days int) []types.TrendPoint {
	if days < 1 {
		days = 1
	}
	now := e.now()
	counts := make(map[string]int, days)
	cutoff := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)
	for _, m := range e.messages {
		if m.Date.Before(cutoff) || m.Date.After(now) {
			continue
		}
		// Bucket in the same zone the day labels are built in, so a message
		// near midnight in another zone lands on the right day.
		counts[m.Date.In(now.Location()).Format("2006-01-02")]++
	}

	points := make([]types.TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, types.TrendPoint{
			Date:     day,
			Received: counts[day],
			Sent:     0,
		})
	}
	return points
}

// VolumeTrends recomputes the trend for an arbitrary day count; it bypasses
// the aggregate cache so the result is always fresh relative to the current
// snapshot.
func (e *Engine) VolumeTrends(days int) []types.TrendPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	if days < 1 {
		days = trendDays
	}
	return e.trend(days)
}

func (e *Engine) topBy(count func(*types.Contact) int) []types.ContactActivity {
	ranked := make([]types.ContactActivity, 0, len(e.contacts))
	for _, c := range e.contacts {
		if n := count(c); n > 0 {
			ranked = append(ranked, types.ContactActivity{
				Email:           c.Email,
				Count:           n,
				LastInteraction: c.LastInteraction,
			})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Email < ranked[j].Email
	})
	if len(ranked) > topContacts {
		ranked = ranked[:topContacts]
	}
	return ranked
}

// hourly builds the 24-bucket local-hour histogram and keeps the busiest
// buckets, count descending.
func (e *Engine) hourly() []types.HourActivity {
	var buckets [24]int
	for _, m := range e.messages {
		buckets[m.Date.Local().Hour()]++
	}
	out := make([]types.HourActivity, 0, 24)
	for hour, count := range buckets {
		out = append(out, types.HourActivity{Hour: hour, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > topHours {
		out = out[:topHours]
	}
	return out
}

func (e *Engine) attachmentStats() types.AttachmentStats {
	var stats types.AttachmentStats
	var totalBytes int64
	categories := make(map[string]int)
	for _, m := range e.messages {
		for _, a := range m.Attachments {
			stats.TotalCount++
			totalBytes += int64(a.Size)
			categories[coarseType(a.ContentType)]++
		}
	}
	stats.TotalSizeMB = roundMB(float64(totalBytes))
	if stats.TotalCount > 0 {
		stats.AvgSizeMB = roundMB(float64(totalBytes) / float64(stats.TotalCount))
	}

	ranked := make([]types.TypeCount, 0, len(categories))
	for t, n := range categories {
		ranked = append(ranked, types.TypeCount{Type: t, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Type < ranked[j].Type
	})
	if len(ranked) > topTypes {
		ranked = ranked[:topTypes]
	}
	stats.CommonTypes = ranked
	return stats
}

// coarseType reduces a MIME type to its category ("image/png" -> "image").
func coarseType(contentType string) string {
	t := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	if i := strings.Index(t, "/"); i >= 0 {
		t = t[:i]
	}
	if t == "" {
		return "other"
	}
	return t
}

// rankedContacts sorts contacts by combined interaction count descending.
func (e *Engine) rankedContacts() []*types.Contact {
	ranked := make([]*types.Contact, 0, len(e.contacts))
	for _, c := range e.contacts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		ci := ranked[i].EmailsSent + ranked[i].EmailsReceived
		cj := ranked[j].EmailsSent + ranked[j].EmailsReceived
		if ci != cj {
			return ci > cj
		}
		return ranked[i].Email < ranked[j].Email
	})
	return ranked
}

// Contacts returns contacts sorted by combined interaction count, capped to
// limit (default 100).
func (e *Engine) Contacts(limit int) []types.Contact {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 {
		limit = defaultContacts
	}
	ranked := e.rankedContacts()
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]types.Contact, len(ranked))
	for i, c := range ranked {
		out[i] = *c
	}
	return out
}

// ClearCache drops the derived aggregates but keeps the snapshot and
// contacts.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats = nil
	e.analytics = nil
}

// ClearAll drops everything: snapshot, contacts and aggregates. Statistics
// over the empty state report all-zero counts without error.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = nil
	e.contacts = make(map[string]*types.Contact)
	e.stats = nil
	e.analytics = nil
	e.updatedAt = time.Time{}
}

func roundMB(bytes float64) float64 {
	return math.Round(bytes/(1024*1024)*100) / 100
}
