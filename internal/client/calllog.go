package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/model"
	"github.com/oshokin/aigc-client/internal/utils"
)

// TrackStatus is the outcome recorded for a call.
type TrackStatus string

// Call outcomes.
const (
	TrackLoading TrackStatus = "loading"
	TrackSuccess TrackStatus = "success"
	TrackFailure TrackStatus = "failure"
)

// trackName names records written by the facade.
const trackName = "client"

// Track identifies a call across log records.
type Track struct {
	ID     string
	Name   string
	Status TrackStatus
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (t Track) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", t.ID)
	enc.AddString("name", t.Name)
	enc.AddString("status", string(t.Status))

	return nil
}

// redactedValue replaces credentials in logged headers.
const redactedValue = "[redacted]"

// logHeaders renders request headers in a call record, one key per folded name.
type logHeaders struct {
	fields    []model.Field
	maxLength int
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (h logHeaders) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, field := range h.fields {
		value := redactedValue
		if !isCredentialHeader(field.Name) {
			value = utils.Truncate(utils.SingleLine(field.Value), h.maxLength)
		}

		enc.AddString(field.Name, value)
	}

	return nil
}

func isCredentialHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "proxy-authorization", "x-api-key", "api-key":
		return true
	default:
		return false
	}
}

type userInfoKey struct{}

// WithUserInfo tags calls made with ctx. The tags are joined into the track id of the call record.
func WithUserInfo(ctx context.Context, tags ...string) context.Context {
	return context.WithValue(ctx, userInfoKey{}, append(UserInfo(ctx), tags...))
}

// UserInfo returns the tags attached with WithUserInfo.
func UserInfo(ctx context.Context) []string {
	tags, _ := ctx.Value(userInfoKey{}).([]string)

	return tags[:len(tags):len(tags)]
}

// callLog collects one call record.
type callLog struct {
	enabled   bool
	level     zapcore.Level
	maxLength int
	op        string
	track     Track
	backend   string
	method    string
	url       string
	headers   logHeaders
	body      string
}

func (c *ClientImpl) newCallLog(ctx context.Context, op string, req model.Request, body []byte) *callLog {
	record := &callLog{
		enabled:   c.opts.logPayloads,
		level:     c.opts.logLevel,
		maxLength: c.opts.maxLogLength,
		op:        op,
		backend:   c.backend.Name(),
		method:    req.EffectiveMethod(),
		url:       req.URL,
	}

	if !record.enabled {
		return record
	}

	id := strings.Join(UserInfo(ctx), ",")
	if id == "" {
		id = uuid.NewString()
	}

	record.track = Track{ID: id, Name: trackName, Status: TrackLoading}
	record.url = utils.UnescapeURL(req.URL)
	// Latin1View keeps raw header bytes valid for the log encoder.
	record.headers = logHeaders{fields: req.Header.Latin1View(), maxLength: record.maxLength}
	record.body = utils.LogPayload(body, record.maxLength)

	return record
}

// started logs the loading record of a long-running call.
func (l *callLog) started(ctx context.Context) {
	if !l.enabled {
		return
	}

	logger.LogKV(ctx, l.level, "client call", l.fields("", nil)...)
}

// finished logs the outcome. It never alters the call result.
func (l *callLog) finished(ctx context.Context, response []byte, err error) {
	if !l.enabled {
		return
	}

	l.track.Status = TrackSuccess
	if err != nil {
		l.track.Status = TrackFailure
	}

	logger.LogKV(ctx, l.level, "client call", l.fields(utils.LogPayload(response, l.maxLength), err)...)
}

func (l *callLog) fields(response string, err error) []any {
	kvs := []any{
		"track", l.track,
		"op", l.op,
		"backend", l.backend,
		"method", l.method,
		"url", l.url,
	}

	if len(l.headers.fields) > 0 {
		kvs = append(kvs, "headers", l.headers)
	}

	if l.body != "" {
		kvs = append(kvs, "body", l.body)
	}

	if response != "" {
		kvs = append(kvs, "response", response)
	}

	if err != nil {
		kvs = append(kvs, "error", utils.Truncate(utils.SingleLine(err.Error()), l.maxLength))
	}

	return kvs
}
