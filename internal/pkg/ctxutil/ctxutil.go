package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKeyType struct{}
type traceDataKeyType struct{}

var (
	requestDataKey requestDataKeyType
	traceDataKey   traceDataKeyType
)

// RequestData carries the authenticated actor and change provenance for
// the current request. Source tells the checkpoint layer whether the edit
// came from the interactive UI, the agent, or a programmatic API caller.
type RequestData struct {
	ActorID     uuid.UUID
	Source      string
	UserCommand string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey).(*TraceData); ok {
		return td
	}
	return nil
}
