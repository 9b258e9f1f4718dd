package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/annex-account/pkg/mailer/templates"
)

// LocalizeEmailData resolves the job's IP once, fills Location when missing and
// rewrites Time in the recipient's timezone. Lookup failures leave data as is.
func LocalizeEmailData(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	ip := strings.TrimSpace(fmt.Sprintf("%v", data["IP"]))
	if resolver == nil || ip == "" || ip == "<nil>" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return
	}
	if loc, ok := data["Location"]; !ok || fmt.Sprintf("%v", loc) == "" {
		if s := mailtpl.FormatGeo(g); s != "" {
			data["Location"] = s
		}
	}
	if strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok && !t.IsZero() {
		data["Time"] = t.In(loc).Format("02 January 2006, 15:04 MST")
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	s := fmt.Sprintf("%v", v)
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
