package observability

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/config"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

var globalClient *LangfuseClient

// InitializeLangfuse initializes the global Langfuse client.
// The henomis SDK reads LANGFUSE_PUBLIC_KEY, LANGFUSE_SECRET_KEY and LANGFUSE_HOST from the environment.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		globalClient = &LangfuseClient{enabled: false, ctx: ctx}
		return globalClient
	}

	lf := langfuse.New(ctx)
	globalClient = &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}

	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	log.Printf("🔍 Langfuse: Public key set: %v, Secret key set: %v",
		os.Getenv("LANGFUSE_PUBLIC_KEY") != "",
		os.Getenv("LANGFUSE_SECRET_KEY") != "")
	return globalClient
}

// GetClient returns the global Langfuse client
func GetClient() *LangfuseClient {
	if globalClient == nil {
		return &LangfuseClient{enabled: false, ctx: context.Background()}
	}
	return globalClient
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c.enabled && c.client != nil
}

// StartTrace starts a trace for one book run
func (c *LangfuseClient) StartTrace(ctx context.Context, name, runID string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	now := time.Now()
	trace, err := c.client.Trace(&model.Trace{
		Name:      name,
		SessionID: runID,
		Timestamp: &now,
		Metadata:  metadata,
		Tags:      []string{"storybook"},
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{enabled: false, ctx: ctx}
	}

	log.Printf("🔍 Langfuse: Created trace %s (name: %s, run: %s)", trace.ID, name, runID)
	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation creates a new generation within the trace, one per model call
func (t *Trace) Generation(name, modelName string, input interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		Model:     modelName,
		StartTime: &now,
		Input:     input,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{enabled: false}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		client:     t.client,
	}
}

// Finish completes the trace and flushes queued events to Langfuse
func (t *Trace) Finish(output interface{}) {
	if !t.enabled || t.client == nil {
		return
	}
	t.trace.Output = output
	if _, err := t.client.Trace(t.trace); err != nil {
		log.Printf("⚠️  Failed to update Langfuse trace: %v", err)
	}
	t.client.Flush(t.ctx)
	log.Printf("🔍 Langfuse: Flush completed for trace %s", t.trace.ID)
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// End records the output and usage of a successful call
func (g *Generation) End(output interface{}, usage llm.Usage) {
	if !g.enabled || g.generation == nil {
		return
	}
	cost := CalculateCost(g.generation.Model, usage)
	g.generation.Output = output
	g.generation.Usage = model.Usage{
		Input:     usage.InputTokens,
		Output:    usage.OutputTokens,
		Total:     usage.TotalTokens,
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.generation.Metadata = map[string]interface{}{"cost_usd": FormatCost(cost)}
	g.finish()
}

// Fail marks the call as failed
func (g *Generation) Fail(err error) {
	if !g.enabled || g.generation == nil {
		return
	}
	g.generation.Level = model.ObservationLevelError
	g.generation.StatusMessage = err.Error()
	g.finish()
}

func (g *Generation) finish() {
	now := time.Now()
	g.generation.EndTime = &now
	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}
