package logward

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*10000) / 10000
}

// TimeExecution returns a closure that logs the elapsed time since the call.
// Use it with defer:
//
//	defer logward.TimeExecution(logger, "process_data")()
func TimeExecution(l *Logger, name string) func() {
	start := time.Now()
	return func() {
		l.Info("function executed", map[string]any{
			"function":               name,
			"execution_time_seconds": roundSeconds(time.Since(start)),
		})
	}
}

// Timed runs fn and logs its outcome with the elapsed time: INFO on success,
// ERROR with the error and its type on failure. The error is returned
// unchanged.
func Timed(l *Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := roundSeconds(time.Since(start))

	if err != nil {
		l.Error("function execution failed", map[string]any{
			"function":               name,
			"execution_time_seconds": elapsed,
			"error":                  err.Error(),
			"error_type":             fmt.Sprintf("%T", err),
		})
		return err
	}

	l.Info("function executed successfully", map[string]any{
		"function":               name,
		"execution_time_seconds": elapsed,
	})
	return nil
}

// Operation tracks a named unit of work across its start and end log records.
// Both records carry the same generated operation ID.
type Operation struct {
	logger *Logger
	name   string
	id     string
	start  time.Time
	fields map[string]any
}

// StartOperation logs the start of a named operation and returns a tracker
// for its completion.
//
//	op := logward.StartOperation(logger, "database_migration", map[string]any{"version": "1.2.0"})
//	defer op.Complete()
func StartOperation(l *Logger, name string, fields ...map[string]any) *Operation {
	op := &Operation{
		logger: l,
		name:   name,
		id:     GenerateRequestID(),
		start:  time.Now(),
		fields: mergeFields(fields),
	}

	data := map[string]any{
		"operation_name": name,
		"operation_id":   op.id,
	}
	for k, v := range op.fields {
		data[k] = v
	}
	l.Info("operation started: "+name, data)
	return op
}

// ID returns the generated operation ID.
func (o *Operation) ID() string { return o.id }

// Complete logs the successful end of the operation with its duration.
func (o *Operation) Complete(extra ...map[string]any) {
	o.logger.Info("operation completed: "+o.name, o.endFields(true, nil, extra))
}

// Fail logs the failed end of the operation with its duration and the error.
func (o *Operation) Fail(err error, extra ...map[string]any) {
	o.logger.Error("operation failed: "+o.name, o.endFields(false, err, extra))
}

func (o *Operation) endFields(success bool, err error, extra []map[string]any) map[string]any {
	data := map[string]any{
		"operation_name":   o.name,
		"operation_id":     o.id,
		"duration_seconds": roundSeconds(time.Since(o.start)),
		"success":          success,
	}
	for k, v := range o.fields {
		data[k] = v
	}
	if err != nil {
		data["error"] = err.Error()
		data["error_type"] = fmt.Sprintf("%T", err)
	}
	for k, v := range mergeFields(extra) {
		data[k] = v
	}
	return data
}

// RunOperation wraps fn in an Operation: start is logged before fn runs and
// completion or failure after, with fn's error returned unchanged.
func RunOperation(l *Logger, name string, fields map[string]any, fn func() error) error {
	var op *Operation
	if fields != nil {
		op = StartOperation(l, name, fields)
	} else {
		op = StartOperation(l, name)
	}

	if err := fn(); err != nil {
		op.Fail(err)
		return err
	}
	op.Complete()
	return nil
}

func mergeFields(fields []map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	merged := make(map[string]any)
	for _, m := range fields {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// RequestLogger logs HTTP requests with a consistent shape, choosing the
// level from the status code: 5xx at ERROR, 4xx at WARN, everything else at
// INFO.
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger creates a request logger over the app category.
func NewRequestLogger() *RequestLogger {
	return &RequestLogger{logger: GetAppLogger("request")}
}

// NewRequestLoggerWith creates a request logger over the given logger.
func NewRequestLoggerWith(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// LogRequest records a completed HTTP request. A zero status code records a
// "started" event instead, without status or duration.
func (r *RequestLogger) LogRequest(method, path string, statusCode int, duration time.Duration, extra ...map[string]any) {
	data := map[string]any{
		"http_method": method,
		"http_path":   path,
	}
	for k, v := range mergeFields(extra) {
		data[k] = v
	}

	if statusCode == 0 {
		r.logger.Info("http request started", data)
		return
	}

	data["http_status_code"] = statusCode
	data["duration_ms"] = math.Round(float64(duration.Microseconds())/10) / 100

	switch {
	case statusCode >= http.StatusInternalServerError:
		r.logger.Error("http request completed", data)
	case statusCode >= http.StatusBadRequest:
		r.logger.Warn("http request completed", data)
	default:
		r.logger.Info("http request completed", data)
	}
}

// PerformanceLogger records timing and resource-usage metrics on the
// debug/performance sublog.
type PerformanceLogger struct {
	logger *Logger
}

// NewPerformanceLogger creates a performance logger backed by the
// debug/performance.log sublog.
func NewPerformanceLogger() *PerformanceLogger {
	return &PerformanceLogger{logger: GetDebugLogger("performance", "performance")}
}

// NewPerformanceLoggerWith creates a performance logger over the given logger.
func NewPerformanceLoggerWith(logger *Logger) *PerformanceLogger {
	return &PerformanceLogger{logger: logger}
}

// LogTiming records how long an operation took.
func (p *PerformanceLogger) LogTiming(operation string, duration time.Duration, extra ...map[string]any) {
	data := map[string]any{
		"operation":   operation,
		"duration_ms": math.Round(float64(duration.Microseconds())/10) / 100,
	}
	for k, v := range mergeFields(extra) {
		data[k] = v
	}
	p.logger.Debug("performance metric: "+operation, data)
}

// LogResourceUsage records a resource usage sample. The unit defaults to MB
// when empty.
func (p *PerformanceLogger) LogResourceUsage(resourceType string, usage float64, unit string, extra ...map[string]any) {
	if unit == "" {
		unit = "MB"
	}
	data := map[string]any{
		"resource_type": resourceType,
		"usage":         usage,
		"unit":          unit,
	}
	for k, v := range mergeFields(extra) {
		data[k] = v
	}
	p.logger.Debug("resource usage: "+resourceType, data)
}
