package telemetry

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/idusortus/quotes-service"

// HeaderTraceID carries the trace ID of the request back to the client.
const HeaderTraceID = "X-Trace-ID"

// Metrics holds HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates the HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware returns the otelgin tracing handler followed by the request metrics handler.
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		requestMetrics(),
	}
}

func requestMetrics() gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if metrics != nil {
			metrics.activeRequests.Add(c.Request.Context(), 1, metric.WithAttributes(method, route))
			defer metrics.activeRequests.Add(c.Request.Context(), -1, metric.WithAttributes(method, route))
		}

		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		c.Next()

		if metrics != nil {
			attrs := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
			metrics.requestDuration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
			metrics.requestTotal.Add(c.Request.Context(), 1, attrs)
		}
	}
}

// FaultCounter counts requests that ended in an unhandled fault, by kind.
type FaultCounter struct {
	counter metric.Int64Counter
}

// NewFaultCounter registers quotes.faults.total on the global meter provider.
func NewFaultCounter() (*FaultCounter, error) {
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"quotes.faults.total",
		metric.WithDescription("Requests that ended in an unhandled fault"),
	)
	if err != nil {
		return nil, err
	}

	return &FaultCounter{counter: counter}, nil
}

// Record counts one fault. A nil counter records nothing.
func (f *FaultCounter) Record(ctx context.Context, kind string) {
	if f == nil {
		return
	}

	f.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}
