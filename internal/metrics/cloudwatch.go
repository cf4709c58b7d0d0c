package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Storybook/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// MetricPutter is the subset of the CloudWatch client used here
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      MetricPutter
	enabled     bool
	environment string
	async       bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

// NewClientWithPutter creates an enabled client that sends synchronously through putter
func NewClientWithPutter(putter MetricPutter, environment string) *Client {
	return &Client{client: putter, enabled: true, environment: environment}
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}
	dimensions := m.dimensions("Endpoint", endpoint)

	m.send(func(ctx context.Context) {
		m.record(ctx, metricName, 1, types.StandardUnitCount, dimensions)
		m.record(ctx, "APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	})
}

// RecordTokenUsage records model token usage
func (m *Client) RecordTokenUsage(model string, inputTokens, outputTokens, totalTokens int) {
	dimensions := m.dimensions("Model", model)

	m.send(func(ctx context.Context) {
		m.record(ctx, "LLMTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions)
		m.record(ctx, "LLMTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions)
		m.record(ctx, "LLMTokens/Total", float64(totalTokens), types.StandardUnitCount, dimensions)
	})
}

// RecordStageFailure counts a stage that exhausted its retries
func (m *Client) RecordStageFailure(stage string) {
	dimensions := m.dimensions("Stage", stage)

	m.send(func(ctx context.Context) {
		m.record(ctx, "StageFailures", 1, types.StandardUnitCount, dimensions)
	})
}

// RecordRun records the duration and illustration count of a book run
func (m *Client) RecordRun(duration time.Duration, success bool, illustrations int) {
	dimensions := m.dimensions("Success", boolToString(success))

	m.send(func(ctx context.Context) {
		m.record(ctx, "RunDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
		m.record(ctx, "IllustrationCount", float64(illustrations), types.StandardUnitCount, dimensions)
	})
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func (m *Client) send(fn func(ctx context.Context)) {
	if !m.enabled || m.client == nil {
		return
	}
	if !m.async {
		fn(context.Background())
		return
	}
	go fn(context.Background())
}

func (m *Client) record(ctx context.Context, metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if err := m.putMetric(ctx, metricName, value, unit, dimensions); err != nil {
		log.Printf("Failed to record %s metric: %v", metricName, err)
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
