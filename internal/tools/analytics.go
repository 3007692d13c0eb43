package tools

import (
	"fmt"
)

// snapshotLimit bounds how many messages the analytics tools pull from the
// session per refresh.
const snapshotLimit = 100

// refreshSnapshot feeds the engine a fresh bounded snapshot unless the
// current one is still inside the validity window.
func refreshSnapshot(d deps, folder string) error {
	if !d.cfg.EnableAnalytics {
		return fmt.Errorf("analytics are disabled (ENABLE_ANALYTICS=false)")
	}
	if d.engine.Fresh() {
		return nil
	}
	msgs, err := d.session.GetEmails(folder, snapshotLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	d.engine.UpdateEmails(msgs)
	return nil
}

// GetEmailStatsTool returns the statistics aggregate.
type GetEmailStatsTool struct {
	deps
}

func (t *GetEmailStatsTool) Name() string {
	return "get_email_stats"
}

func (t *GetEmailStatsTool) Description() string {
	return "Get mailbox statistics: counts, most active contact, busiest folder, storage estimate"
}

func (t *GetEmailStatsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Optional: folder to sample (default INBOX)",
			},
		},
	}
}

func (t *GetEmailStatsTool) Execute(params map[string]interface{}) (interface{}, error) {
	if err := refreshSnapshot(t.deps, stringParam(params, "folder")); err != nil {
		return nil, err
	}
	return t.engine.EmailStats(), nil
}

// GetEmailAnalyticsTool returns the analytics aggregate.
type GetEmailAnalyticsTool struct {
	deps
}

func (t *GetEmailAnalyticsTool) Name() string {
	return "get_email_analytics"
}

func (t *GetEmailAnalyticsTool) Description() string {
	return "Get mailbox analytics: 30-day volume trend, top contacts, hourly activity, attachment breakdown"
}

func (t *GetEmailAnalyticsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Optional: folder to sample (default INBOX)",
			},
		},
	}
}

func (t *GetEmailAnalyticsTool) Execute(params map[string]interface{}) (interface{}, error) {
	if err := refreshSnapshot(t.deps, stringParam(params, "folder")); err != nil {
		return nil, err
	}
	return t.engine.EmailAnalytics(), nil
}

// GetContactsTool lists contacts ranked by interaction count.
type GetContactsTool struct {
	deps
}

func (t *GetContactsTool) Name() string {
	return "get_contacts"
}

func (t *GetContactsTool) Description() string {
	return "List contacts derived from the mailbox, ranked by interaction count"
}

func (t *GetContactsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: maximum contacts to return (default 100)",
			},
		},
	}
}

func (t *GetContactsTool) Execute(params map[string]interface{}) (interface{}, error) {
	if err := refreshSnapshot(t.deps, ""); err != nil {
		return nil, err
	}
	contacts := t.engine.Contacts(intParam(params, "limit", 0))
	return map[string]interface{}{
		"count":    len(contacts),
		"contacts": contacts,
	}, nil
}

// GetVolumeTrendsTool recomputes the volume trend for a caller-chosen window.
type GetVolumeTrendsTool struct {
	deps
}

func (t *GetVolumeTrendsTool) Name() string {
	return "get_volume_trends"
}

func (t *GetVolumeTrendsTool) Description() string {
	return "Get day-by-day email volume for a trailing window (default 30 days)"
}

func (t *GetVolumeTrendsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"days": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: window size in days (default 30)",
			},
		},
	}
}

func (t *GetVolumeTrendsTool) Execute(params map[string]interface{}) (interface{}, error) {
	if err := refreshSnapshot(t.deps, ""); err != nil {
		return nil, err
	}
	trend := t.engine.VolumeTrends(intParam(params, "days", 0))
	return map[string]interface{}{
		"days":  len(trend),
		"trend": trend,
	}, nil
}
