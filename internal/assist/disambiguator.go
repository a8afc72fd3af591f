// Package assist optionally narrows an ambiguous employee resolution with an
// LLM. It sits outside the pure resolver: the tools layer consults it after
// resolution stayed ambiguous despite a caller-supplied context, and any
// failure degrades to the plain ambiguous answer.
package assist

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"leave-manager/internal/constants"
	"leave-manager/internal/models"
	"leave-manager/pkg/circuit"
	errs "leave-manager/pkg/errors"
	"leave-manager/pkg/logging"
)

// ChatCompleter abstracts the OpenAI client so tests can stub it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Disambiguator asks a model to pick the one candidate matching the caller's
// context, guarded by a circuit breaker so a flaky API never blocks tools.
type Disambiguator struct {
	client  ChatCompleter
	model   string
	breaker *circuit.Breaker
	log     *logging.Logger
}

func New(apiKey, model string, timeout time.Duration, log *logging.Logger) *Disambiguator {
	if timeout <= 0 {
		timeout = constants.AssistDefaultAPITimeout
	}
	cfg := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(cfg)
	return NewWithClient(client, model, timeout, log)
}

// NewWithClient wires an explicit completer; used by tests.
func NewWithClient(client ChatCompleter, model string, timeout time.Duration, log *logging.Logger) *Disambiguator {
	breaker := circuit.New(circuit.Config{
		Name:              "openai_assist",
		OperationTimeout:  timeout,
		OpenFor:           constants.AssistOpenFor,
		MaxConsecFailures: 3,
		FailureRate:       constants.OpenAICircuitFailureRate,
		SlowCallThreshold: constants.AssistSlowCallThreshold,
		SlowCallRate:      constants.OpenAICircuitSlowCallRate,
	}, log)
	return &Disambiguator{
		client:  client,
		model:   model,
		breaker: breaker,
		log:     log.WithComponent("assist"),
	}
}

var pickRe = regexp.MustCompile(`\d+`)

// Pick returns the zero-based index of the candidate the model selected for
// the query and hint, or ok=false when the model abstains, answers
// nonsense, or the call fails. Callers treat false as "stay ambiguous".
func (d *Disambiguator) Pick(ctx context.Context, query, hint string, candidates []models.Employee) (int, bool) {
	if len(candidates) < 2 || strings.TrimSpace(hint) == "" {
		return 0, false
	}

	var choice string
	err := d.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       d.model,
			Temperature: 0.0,
			MaxTokens:   10,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleSystem,
					Content: "You match employee search queries to directory entries. " +
						"Answer with the single number of the matching entry, or the word none.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(query, hint, candidates),
				},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion")
		}
		choice = resp.Choices[0].Message.Content
		return nil
	}, nil)
	if err != nil {
		d.log.Warn("disambiguation call failed",
			logging.Err(errs.NewExternal("assist.Pick", "openai", "candidate pick failed", err)))
		return 0, false
	}

	lowered := strings.ToLower(choice)
	if strings.Contains(lowered, "none") {
		return 0, false
	}
	m := pickRe.FindString(choice)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > len(candidates) {
		return 0, false
	}
	return n - 1, true
}

func buildPrompt(query, hint string, candidates []models.Employee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\nContext: %q\nEntries:\n", query, hint)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s | %s | %s\n",
			i+1, c.DisplayName, c.DesignationOr("no designation"), c.EmailOr("no email"))
	}
	b.WriteString("Which entry matches the query and context?")
	return b.String()
}
