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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestHTTPServerRequest(t *testing.T) {
	rec := installRecorder(t)

	var inner oteltrace.SpanContext
	status, err := HTTPServerRequest(context.Background(), "GET", "/projects", nil, func(ctx context.Context) (int, error) {
		inner = oteltrace.SpanContextFromContext(ctx)
		return 200, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.True(t, inner.IsValid())

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /projects", spans[0].Name())
}

func TestHTTPServerRequest_Error(t *testing.T) {
	installRecorder(t)
	boom := errors.New("boom")

	_, err := HTTPServerRequest(context.Background(), "POST", "/x", nil, func(ctx context.Context) (int, error) {
		return 500, boom
	})
	assert.ErrorIs(t, err, boom)
}

type row struct {
	ID   uint
	Name string
}

func TestGormPlugin(t *testing.T) {
	rec := installRecorder(t)

	db, err := gorm.Open(sqlite.Open("file:inject_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterGormPlugin(db, "sqlite", true, true))
	require.NoError(t, db.AutoMigrate(&row{}))

	ctx, span := otel.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&row{Name: "a"}).Error)
	var got row
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	span.End()

	assert.Equal(t, "a", got.Name)

	names := make([]string, 0)
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "gorm.create")
	assert.Contains(t, names, "gorm.query")
}

func TestGormPlugin_NoParentSpan(t *testing.T) {
	rec := installRecorder(t)

	db, err := gorm.Open(sqlite.Open("file:inject_noparent?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterGormPlugin(db, "sqlite", false, false))
	require.NoError(t, db.AutoMigrate(&row{}))
	require.NoError(t, db.Create(&row{Name: "b"}).Error)

	assert.Empty(t, rec.Ended())
}
