// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package inject

import (
	"context"
	"time"

	"github.com/go-arcade/agileboard/pkg/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// HTTPServerRequest 对 HTTP 服务器请求进行埋点
// carrier 携带上游的 traceparent 头；fn 处理请求并返回状态码
func HTTPServerRequest(ctx context.Context, method, path string, carrier propagation.TextMapCarrier, fn func(ctx context.Context) (statusCode int, err error)) (int, error) {
	if carrier != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	}
	ctx, span := trace.StartSpan(ctx, method+" "+path,
		oteltrace.WithSpanKind(oteltrace.SpanKindServer))
	defer span.End()

	startTime := time.Now()
	trace.AddSpanAttributes(span,
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	statusCode, err := fn(ctx)

	trace.AddSpanAttributes(span,
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("http.duration_ms", time.Since(startTime).Milliseconds()),
	)

	switch {
	case err != nil:
		trace.RecordError(span, err)
	case statusCode >= 500:
		trace.SetSpanStatus(span, codes.Error, "")
	default:
		trace.SetSpanStatus(span, codes.Ok, "")
	}
	return statusCode, err
}
