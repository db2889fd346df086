package log

import "spendlens/internal/budget"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldBudgetID      = "budget_id"
	FieldCategory      = "category"
	FieldAlertID       = "alert_id"
	FieldAlertTier     = "alert_tier"
	FieldUtilization   = "utilization"
	FieldFilterSort    = "filter_sort"
	FieldFilterRange   = "filter_range"
	FieldGroupKey      = "group_key"
	FieldResultCount   = "result_count"
	FieldCacheHit      = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpQuery   = "query"
	OpAdjust  = "adjust"
	OpDismiss = "dismiss"
	OpPublish = "publish"
	OpNotify  = "notify"
	OpExport  = "export"
	OpStartup = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error text; nil errors add nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithAlert adds the identifying fields of a budget alert.
func (f LogFields) WithAlert(a budget.Alert) LogFields {
	f[FieldAlertID] = a.ID
	f[FieldAlertTier] = string(a.Tier)
	f[FieldBudgetID] = a.BudgetID
	f[FieldCategory] = a.Category
	f[FieldUtilization] = a.Utilization.StringFixed(1)
	return f
}

// WithQuery adds the shape of a transaction query.
func (f LogFields) WithQuery(sort, timeRange, group string, results int) LogFields {
	f[FieldFilterSort] = sort
	f[FieldFilterRange] = timeRange
	f[FieldGroupKey] = group
	f[FieldResultCount] = results
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
