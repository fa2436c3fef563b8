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
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormTracerName = "github.com/go-arcade/agileboard/pkg/trace/inject/gorm"
	gormSpanKey    = "otel:span"
	gormStartKey   = "otel:start"
)

// GormPlugin implements gorm.Plugin and opens one client span per statement
type GormPlugin struct {
	// WithQuery records the SQL text on the span
	WithQuery bool
	// WithRows records rows affected
	WithRows bool
	// System is the db.system attribute, e.g. mysql or sqlite
	System string
}

func (p *GormPlugin) Name() string {
	return "opentelemetry"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("create")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("query")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("delete")); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("row")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("raw")); err != nil {
		return err
	}

	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after)
}

func (p *GormPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		// statements outside a traced request are not worth a root span
		if !trace.SpanContextFromContext(ctx).IsValid() {
			return
		}

		_, span := otel.Tracer(gormTracerName).Start(ctx, "gorm."+operation, trace.WithSpanKind(trace.SpanKindClient))
		attrs := []attribute.KeyValue{
			attribute.String("db.system", p.system()),
			attribute.String("db.operation", operation),
		}
		if db.Statement.Schema != nil && db.Statement.Schema.Table != "" {
			attrs = append(attrs, attribute.String("db.sql.table", db.Statement.Schema.Table))
		}
		span.SetAttributes(attrs...)

		db.InstanceSet(gormSpanKey, span)
		db.InstanceSet(gormStartKey, time.Now())
	}
}

func (p *GormPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if start, ok := db.InstanceGet(gormStartKey); ok {
		if t, ok := start.(time.Time); ok {
			span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(t).Milliseconds()))
		}
	}
	if p.WithQuery {
		if sql := strings.TrimSpace(db.Statement.SQL.String()); sql != "" {
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	if p.WithRows {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}

	if err := db.Error; err != nil && err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (p *GormPlugin) system() string {
	if p.System == "" {
		return "mysql"
	}
	return p.System
}

// RegisterGormPlugin registers the OpenTelemetry plugin on db
func RegisterGormPlugin(db *gorm.DB, system string, withQuery bool, withRows bool) error {
	return db.Use(&GormPlugin{
		WithQuery: withQuery,
		WithRows:  withRows,
		System:    system,
	})
}
