package metrics

import (
	"context"
	"time"
)

// Recorder fans pipeline measurements out to Sentry and CloudWatch
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
}

// NewRecorder combines the two sinks; cw may be nil
func NewRecorder(cw *Client) *Recorder {
	if cw == nil {
		cw = &Client{enabled: false}
	}
	return &Recorder{sentry: NewSentryMetrics(), cloudwatch: cw}
}

// RecordStage records one finished stage
func (r *Recorder) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	r.sentry.RecordStage(ctx, stage, duration, err == nil)
	if err != nil {
		r.cloudwatch.RecordStageFailure(stage)
	}
}

// RecordRun records a finished run
func (r *Recorder) RecordRun(ctx context.Context, duration time.Duration, err error, illustrations int) {
	r.sentry.RecordRun(ctx, duration, err == nil, illustrations)
	r.cloudwatch.RecordRun(duration, err == nil, illustrations)
}

// RecordTokenUsage records token counts of one model call
func (r *Recorder) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens, totalTokens int) {
	r.sentry.RecordTokenUsage(ctx, model, inputTokens, outputTokens, totalTokens)
	r.cloudwatch.RecordTokenUsage(model, inputTokens, outputTokens, totalTokens)
}

// RecordAPIRequest records one HTTP request
func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
}
