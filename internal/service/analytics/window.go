package analytics

import (
	"time"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

// Window is the resolved [Start, End) interval a report's windowed sections
// are computed over.
type Window struct {
	Start time.Time
	End   time.Time
}

// resolveWindow turns a caller filter into a concrete window. Explicit dates
// win over the named range; an absent or unrecognized token falls back to the
// given default. Nothing validates Start < End here, so callers must not
// assume ordering when the filter carries inverted explicit dates.
func resolveWindow(filter *model.AnalyticsFilter, defaultRange model.TimeRange, now time.Time) Window {
	end := now
	if filter != nil && filter.EndDate != nil {
		end = *filter.EndDate
	}

	if filter != nil && filter.StartDate != nil {
		return Window{Start: *filter.StartDate, End: end}
	}

	token := defaultRange
	if filter != nil && filter.TimeRange != "" {
		token = filter.TimeRange
	}

	return Window{Start: startForRange(token, end), End: end}
}

func startForRange(token model.TimeRange, end time.Time) time.Time {
	switch token {
	case model.TimeRangeLastWeek:
		return end.AddDate(0, 0, -7)
	case model.TimeRangeLastMonth:
		return end.AddDate(0, -1, 0)
	case model.TimeRangeLastQuarter:
		return end.AddDate(0, -3, 0)
	case model.TimeRangeLastYear:
		return end.AddDate(-1, 0, 0)
	default:
		return end.AddDate(0, -1, 0)
	}
}
