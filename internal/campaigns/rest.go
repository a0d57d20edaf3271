package campaigns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTSource reads campaign data through the hosted backend's PostgREST API.
type RESTSource struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewRESTSource(baseURL, apiKey string, client *http.Client) *RESTSource {
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &RESTSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  client,
	}
}

func (s *RESTSource) do(ctx context.Context, table string, query map[string]string) ([]byte, int, error) {
	u, err := url.Parse(s.BaseURL + "/rest/v1/" + table)
	if err != nil {
		return nil, 0, err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", s.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return out, resp.StatusCode, nil
}

func (s *RESTSource) selectRows(ctx context.Context, table string, query map[string]string, dst any) error {
	out, code, err := s.do(ctx, table, query)
	if err != nil {
		return fmt.Errorf("supabase select %s: %w", table, err)
	}
	if code >= 300 {
		return fmt.Errorf("supabase select %s (%d): %s", table, code, string(out))
	}
	if err := json.Unmarshal(out, dst); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

func (s *RESTSource) CampaignStats(ctx context.Context) ([]CampaignStats, error) {
	var rows []CampaignStats
	err := s.selectRows(ctx, "v_campaign_stats", map[string]string{
		"select": "*",
		"order":  "last_activity.desc",
	}, &rows)
	return rows, err
}

func (s *RESTSource) Contacts(ctx context.Context, campaignID string) ([]CallContact, error) {
	query := map[string]string{
		"select": "*",
		"order":  "processing_order.asc",
	}
	if campaignID != "" {
		query["campaign_id"] = "eq." + campaignID
	}

	var rows []CallContact
	err := s.selectRows(ctx, "contacts", query, &rows)
	return rows, err
}

func (s *RESTSource) RecentContacts(ctx context.Context) ([]CallContact, error) {
	var rows []CallContact
	err := s.selectRows(ctx, "contacts", map[string]string{
		"select": "*",
		"order":  "last_called_at.desc",
	}, &rows)
	return rows, err
}

func (s *RESTSource) Ping(ctx context.Context) error {
	var rows []map[string]any
	return s.selectRows(ctx, "v_campaign_stats", map[string]string{
		"select": "campaign_id",
		"limit":  "1",
	}, &rows)
}
