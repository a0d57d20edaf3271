// Package web embeds the portal's page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"

	"autolynx-portal/internal/campaigns"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"formatTime":  formatTime,
	"statusClass": statusClass,
	"orDash":      orDash,
	"money":       money,
	"barHeight":   barHeight,
}

// Templates parses every page template. Each page is a named template
// ("index", "campaigns", ...) and live pages also define "<name>_content",
// the region re-rendered on refresh.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return sub
}

func formatTime(v any) string {
	var t time.Time
	switch ts := v.(type) {
	case *campaigns.Timestamp:
		if ts == nil {
			return "-"
		}
		t = ts.Time
	case campaigns.Timestamp:
		t = ts.Time
	case time.Time:
		t = ts
	default:
		return "-"
	}
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

func statusClass(s campaigns.Status) string {
	switch s {
	case campaigns.StatusNew, campaigns.StatusCalling, campaigns.StatusDone, campaigns.StatusFailed:
		return "status-" + string(s)
	default:
		return "status-unknown"
	}
}

func orDash(v any) string {
	switch p := v.(type) {
	case *int:
		if p != nil {
			return fmt.Sprint(*p)
		}
	case *string:
		if p != nil && *p != "" {
			return *p
		}
	case string:
		if p != "" {
			return p
		}
	}
	return "-"
}

func money(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *p)
}

// barHeight scales n against max into a CSS percentage for the trend chart.
func barHeight(n int, points []campaigns.TrendPoint) int {
	top := 0
	for _, p := range points {
		top = max(top, p.Calls)
	}
	if top == 0 {
		return 0
	}
	return n * 100 / top
}
