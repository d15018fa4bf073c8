package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-analytics/config"
	"order-analytics/internal/models"
	"order-analytics/internal/util"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrEmptyQuery is returned when the user question is blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// contextWindowDays bounds the daily rollup included in the LLM context.
const contextWindowDays = 30

// ChatCompleter is the single external call this service makes. It is an
// injected dependency so tests can swap in a fake.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAICompleter implements ChatCompleter against the OpenAI chat
// completions API.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAICompleter creates an OpenAI-backed completer from config.
func NewOpenAICompleter(cfg config.OpenAIConfig) *OpenAICompleter {
	return &OpenAICompleter{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Complete sends one chat-completions request and returns the raw answer.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnalyticsProvider is the slice of the analytics service the LLM handler
// needs to build its context block.
type AnalyticsProvider interface {
	Summary(ctx context.Context) (*models.Summary, error)
	RecentDaily(ctx context.Context, days int) ([]models.DailyAggregate, error)
}

// LLMService answers free-text questions over the stored order data.
type LLMService struct {
	analytics AnalyticsProvider
	completer ChatCompleter
}

// NewLLMService creates a new LLM query service
func NewLLMService(analytics AnalyticsProvider, completer ChatCompleter) *LLMService {
	return &LLMService{
		analytics: analytics,
		completer: completer,
	}
}

// Ask forwards a user question to the language model together with the
// current aggregation data. The model answer is returned verbatim. No retry
// on failure.
func (s *LLMService) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuery
	}

	ctx, span := util.StartSpan(ctx, "LLMService.Ask")
	defer span.End()

	start := time.Now()
	defer func() {
		util.LLMQueryLatency.Observe(time.Since(start).Seconds())
	}()

	summary, err := s.analytics.Summary(ctx)
	if err != nil {
		util.LLMQueriesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to build analytics context: %w", err)
	}

	recent, err := s.analytics.RecentDaily(ctx, contextWindowDays)
	if err != nil {
		util.LLMQueriesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to build analytics context: %w", err)
	}

	answer, err := s.completer.Complete(ctx, BuildContextBlock(summary, recent), question)
	if err != nil {
		util.LLMQueriesTotal.WithLabelValues("error").Inc()
		return "", err
	}

	util.LLMQueriesTotal.WithLabelValues("success").Inc()
	return answer, nil
}

// BuildContextBlock renders the aggregation data as the fixed-shape text
// block sent to the model as system context.
func BuildContextBlock(summary *models.Summary, recent []models.DailyAggregate) string {
	var b strings.Builder

	b.WriteString("You are an analytics assistant for a restaurant order dashboard. ")
	b.WriteString("Answer the user's question using only the data below.\n\n")

	b.WriteString("== Overview ==\n")
	fmt.Fprintf(&b, "Total orders: %d\n", summary.TotalOrders)
	fmt.Fprintf(&b, "Total revenue: %s\n", summary.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&b, "Average ticket: %s\n", summary.AverageTicket.StringFixed(2))

	fmt.Fprintf(&b, "\n== Orders per day (last %d days) ==\n", contextWindowDays)
	for _, d := range recent {
		fmt.Fprintf(&b, "%s: %d orders, total %s\n",
			d.Date.Format("2006-01-02"), d.OrderCount, d.TotalAmount.StringFixed(2))
	}

	b.WriteString("\n== Orders by status ==\n")
	for _, st := range summary.ByStatus {
		fmt.Fprintf(&b, "%s: %d\n", st.Status, st.Count)
	}

	b.WriteString("\n== Top customers ==\n")
	for _, c := range summary.TopCustomers {
		fmt.Fprintf(&b, "%s: %d orders, total %s\n",
			c.CustomerName, c.OrderCount, c.TotalSpent.StringFixed(2))
	}

	return b.String()
}
