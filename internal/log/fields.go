package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldUserName      = "user_name"
	FieldRole          = "role"
	FieldProductID     = "product_id"
	FieldTransactionID = "transaction_id"
	FieldReceiptCode   = "receipt_code"
	FieldPurchaseID    = "purchase_id"
	FieldPurchaseCode  = "purchase_code"
	FieldSupplierID    = "supplier_id"
	FieldPaymentMethod = "payment_method"
	FieldAmount        = "amount"
	FieldTotal         = "total"
	FieldQuantity      = "quantity"
	FieldGranularity   = "granularity"
	FieldPeriodStart   = "period_start"
	FieldPeriodEnd     = "period_end"
	FieldRecordCount   = "record_count"
	FieldMessageType   = "message_type"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentCheckout  = "checkout"
	ComponentPurchase  = "purchase"
	ComponentReport    = "report"
	ComponentBackup    = "backup"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentMail      = "mail"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpCheckout = "checkout"
	OpPayment  = "payment"
	OpExport   = "export"
	OpImport   = "import"
	OpLogin    = "login"
	OpReset    = "password_reset"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

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

// WithTransaction adds checkout-related fields
func (f LogFields) WithTransaction(id, code string, total int64, method string) LogFields {
	f[FieldTransactionID] = id
	f[FieldReceiptCode] = code
	f[FieldTotal] = total
	f[FieldPaymentMethod] = method
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields
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
