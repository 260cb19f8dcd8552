package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
)

// declinable is implemented by responses that can report a handled failure,
// such as a rejected or cooling-down ship action.
type declinable interface {
	Err() error
}

// PrometheusMiddleware records the duration and status of every mediator request.
//
// Request names are the type without pointer or package prefix:
// "*types.NavigateShipCommand" becomes "NavigateShipCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordRequest(requestName(request), requestStatus(response, err), time.Since(start).Seconds())
		return response, err
	}
}

func requestStatus(response mediator.Response, err error) string {
	if err != nil {
		return statusError
	}
	if d, ok := response.(declinable); ok && d.Err() != nil {
		return statusDeclined
	}
	return statusOK
}

func requestName(request mediator.Request) string {
	if request == nil {
		return "Unknown"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
