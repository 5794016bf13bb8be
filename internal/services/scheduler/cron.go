package scheduler

import (
	"github.com/robfig/cron/v3"
)

// parseSpec tries 6-field (with seconds) then 5-field (standard) parsing.
// Descriptors such as "@every 30s" are accepted by both. If timezone is
// non-empty and non-UTC, it is applied via the CRON_TZ= prefix.
func parseSpec(spec string, timezone string) (cron.Schedule, error) {
	if timezone != "" && timezone != "UTC" {
		spec = "CRON_TZ=" + timezone + " " + spec
	}
	parser6 := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser6.Parse(spec)
	if err == nil {
		return sched, nil
	}
	parser5 := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser5.Parse(spec)
}
