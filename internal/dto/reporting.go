package dto

import "time"

// ReportPeriodParams bounds income statement and cash flow reports. Both ends are
// inclusive calendar dates; when both are absent the report uses current balances.
type ReportPeriodParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To   *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}
