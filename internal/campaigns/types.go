// Package campaigns reads the externally owned campaign tables and derives
// the figures shown on the campaign, detail and dashboard pages.
package campaigns

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable is returned by a Source when no campaign backend is configured.
var ErrUnavailable = errors.New("campaign data source is not configured")

type Status string

const (
	StatusNew     Status = "NEW"
	StatusCalling Status = "CALLING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// CampaignStats is one row of the v_campaign_stats view.
type CampaignStats struct {
	CampaignID   string     `gorm:"column:campaign_id" json:"campaign_id"`
	Total        int        `gorm:"column:total" json:"total"`
	Completed    int        `gorm:"column:completed" json:"completed"`
	Failed       int        `gorm:"column:failed" json:"failed"`
	SuccessPct   float64    `gorm:"column:success_pct" json:"success_pct"`
	LastActivity *Timestamp `gorm:"column:last_activity" json:"last_activity"`
}

func (CampaignStats) TableName() string {
	return "v_campaign_stats"
}

// CallContact is one row of the contacts table, written by the calling
// workflow.
type CallContact struct {
	RowID             string     `gorm:"column:row_id" json:"row_id"`
	CampaignID        string     `gorm:"column:campaign_id" json:"campaign_id"`
	Name              string     `gorm:"column:name" json:"name"`
	BusinessName      string     `gorm:"column:business_name" json:"business_name"`
	Phone             string     `gorm:"column:phone" json:"phone"`
	Status            Status     `gorm:"column:status" json:"status"`
	Transcript        RawJSON    `gorm:"column:transcript" json:"transcript"`
	LastCalledAt      *Timestamp `gorm:"column:last_called_at" json:"last_called_at"`
	ProcessingOrder   *int       `gorm:"column:processing_order" json:"processing_order"`
	RecordingURL      *string    `gorm:"column:recording_url" json:"recording_url,omitempty"`
	Cost              *float64   `gorm:"column:cost" json:"cost,omitempty"`
	EndedReason       *string    `gorm:"column:ended_reason" json:"ended_reason,omitempty"`
	SuccessEvaluation *bool      `gorm:"column:success_evaluation" json:"success_evaluation,omitempty"`
}

func (CallContact) TableName() string {
	return "contacts"
}

// Source is where campaign data comes from.
type Source interface {
	CampaignStats(ctx context.Context) ([]CampaignStats, error)
	// Contacts lists the contacts of one campaign, or of all campaigns when
	// campaignID is empty, in processing order.
	Contacts(ctx context.Context, campaignID string) ([]CallContact, error)
	RecentContacts(ctx context.Context) ([]CallContact, error)
	Ping(ctx context.Context) error
}

// Unavailable is the Source used when CAMPAIGN_SOURCE=none.
type Unavailable struct{}

func (Unavailable) CampaignStats(context.Context) ([]CampaignStats, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Contacts(context.Context, string) ([]CallContact, error) {
	return nil, ErrUnavailable
}

func (Unavailable) RecentContacts(context.Context) ([]CallContact, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Ping(context.Context) error {
	return ErrUnavailable
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts the timestamp spellings PostgREST and Postgres produce,
// with or without a zone. Zoneless values are taken as UTC.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *Timestamp) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		*t = parsed
		return err
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		*t = parsed
		return err
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}

// RawJSON holds a json/jsonb column verbatim.
type RawJSON json.RawMessage

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func (r *RawJSON) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append(RawJSON(nil), v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", value)
	}
	return nil
}

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// Empty reports whether there is no transcript.
func (r RawJSON) Empty() bool {
	s := strings.TrimSpace(string(r))
	return s == "" || s == "null"
}
