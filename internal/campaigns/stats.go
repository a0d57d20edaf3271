package campaigns

import (
	"fmt"
	"math"
	"time"
)

const (
	BadgeInProgress          = "In Progress"
	BadgeCompleted           = "Completed"
	BadgeCompletedWithErrors = "Completed with Errors"
)

const trendDays = 7

type TrendPoint struct {
	Date    string `json:"date"`
	Calls   int    `json:"calls"`
	Success int    `json:"success"`
}

type DashboardStats struct {
	TotalCampaigns  int          `json:"total_campaigns"`
	TotalCalls      int          `json:"total_calls"`
	SuccessRate     int          `json:"success_rate"`
	TodaysCalls     int          `json:"todays_calls"`
	ActiveCampaigns int          `json:"active_campaigns"`
	Trend           []TrendPoint `json:"trend"`
}

// Dashboard aggregates campaign rows and every contact into the dashboard
// figures. Days are UTC calendar days.
func Dashboard(stats []CampaignStats, contacts []CallContact, now time.Time) DashboardStats {
	out := DashboardStats{
		TotalCampaigns: len(stats),
		TotalCalls:     len(contacts),
	}

	done := 0
	for _, c := range contacts {
		if c.Status == StatusDone {
			done++
		}
	}
	out.SuccessRate = percent(done, len(contacts))

	for _, s := range stats {
		if s.Total > s.Completed+s.Failed {
			out.ActiveCampaigns++
		}
	}

	now = now.UTC()
	today := dayKey(now)
	byDay := make(map[string]*TrendPoint, trendDays)
	out.Trend = make([]TrendPoint, trendDays)
	for i := 0; i < trendDays; i++ {
		d := now.AddDate(0, 0, i-(trendDays-1))
		out.Trend[i] = TrendPoint{Date: fmt.Sprintf("%d/%d", int(d.Month()), d.Day())}
		byDay[dayKey(d)] = &out.Trend[i]
	}

	for _, c := range contacts {
		if c.LastCalledAt == nil {
			continue
		}
		key := dayKey(c.LastCalledAt.UTC())
		if key == today {
			out.TodaysCalls++
		}
		if p, ok := byDay[key]; ok {
			p.Calls++
			if c.Status == StatusDone {
				p.Success++
			}
		}
	}
	return out
}

type DetailStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	InProgress  int `json:"in_progress"`
	SuccessRate int `json:"success_rate"`
	Progress    int `json:"progress"`
}

// Detail summarises the contacts of a single campaign. The success rate only
// counts finished calls.
func Detail(contacts []CallContact) DetailStats {
	out := DetailStats{Total: len(contacts)}
	for _, c := range contacts {
		switch c.Status {
		case StatusDone:
			out.Completed++
		case StatusFailed:
			out.Failed++
		case StatusCalling:
			out.InProgress++
		}
	}
	if out.Total > 0 {
		out.SuccessRate = percent(out.Completed, max(out.Completed+out.Failed, 1))
	}
	out.Progress = percent(out.Completed+out.Failed, out.Total)
	return out
}

type CampaignSummary struct {
	CampaignStats
	InProgress int    `json:"in_progress"`
	Progress   int    `json:"progress"`
	Badge      string `json:"badge"`
}

func Summary(s CampaignStats) CampaignSummary {
	out := CampaignSummary{
		CampaignStats: s,
		InProgress:    s.Total - s.Completed - s.Failed,
		Progress:      percent(s.Completed+s.Failed, s.Total),
	}
	switch {
	case out.InProgress > 0:
		out.Badge = BadgeInProgress
	case s.Failed == 0:
		out.Badge = BadgeCompleted
	default:
		out.Badge = BadgeCompletedWithErrors
	}
	return out
}

func Summaries(stats []CampaignStats) []CampaignSummary {
	out := make([]CampaignSummary, 0, len(stats))
	for _, s := range stats {
		out = append(out, Summary(s))
	}
	return out
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
