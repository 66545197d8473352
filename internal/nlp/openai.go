package nlp

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/perturbia/perturbia/internal/cache"
	"github.com/perturbia/perturbia/internal/worker"
)

// OpenAIBackend answers entity and synonym lookups with the Chat Completions
// API. Tokenization, sentence splitting and tagging stay local; a remote
// round-trip per token is never worth it.
type OpenAIBackend struct {
	client  *openai.Client
	config  Config
	limiter *worker.Limiter
	lookups cache.Cache // nil disables caching
}

// entityMention is the JSON contract for entity extraction responses
type entityMention struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// NewOpenAIBackend creates a new OpenAI-backed NLP provider
func NewOpenAIBackend(config Config, lookups cache.Cache) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIBackend{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		limiter: worker.NewLimiter(config.RequestsPerSecond, config.Burst),
		lookups: lookups,
	}, nil
}

// Name returns the backend name
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Available checks if the API is reachable with the configured credentials
func (b *OpenAIBackend) Available(ctx context.Context) bool {
	_, err := b.client.ListModels(ctx)
	return err == nil
}

// Tokenize is answered locally; the adapter falls back
func (b *OpenAIBackend) Tokenize(_ context.Context, _ string) []Token {
	return nil
}

// Sentences is answered locally; the adapter falls back
func (b *OpenAIBackend) Sentences(_ context.Context, _ string) []Span {
	return nil
}

// Tag is answered locally; the adapter falls back
func (b *OpenAIBackend) Tag(_ context.Context, _ []Token) []PartOfSpeech {
	return nil
}

// Entities extracts person and organization mentions and anchors them to
// offsets by substring search. Any API failure yields an empty result.
func (b *OpenAIBackend) Entities(ctx context.Context, text string) []Entity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	key := cache.Key("entities", b.config.Model+"\x00"+text)
	data, ok := b.cached(key)
	if !ok {
		prompt := "List every person name and organization name that appears verbatim in the text below. " +
			"Respond with a JSON array of objects with keys \"text\" and \"label\", " +
			"where label is \"person\" or \"organization\". The \"text\" value must be copied " +
			"exactly from the input. Respond with [] if there are none.\n\nText: " + text

		data, ok = b.chatJSON(ctx, "entities", prompt)
		if !ok {
			return nil
		}
		b.store(key, data)
	}

	var mentions []entityMention
	if err := json.Unmarshal(data, &mentions); err != nil {
		return nil
	}

	candidates := make([]Entity, 0, len(mentions))
	for _, m := range mentions {
		label, ok := parseLabel(m.Label)
		if !ok {
			continue
		}
		candidates = append(candidates, Entity{Text: m.Text, Label: label})
	}

	return anchorEntities(text, candidates)
}

func parseLabel(s string) (EntityLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "per":
		return LabelPerson, true
	case "organization", "organisation", "org", "company":
		return LabelOrganization, true
	}
	return "", false
}

// Synonyms asks for single-word synonyms of the same word class
func (b *OpenAIBackend) Synonyms(ctx context.Context, word string, pos PartOfSpeech) []string {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}

	key := cache.Key("synonyms", b.config.Model+"\x00"+string(pos)+"\x00"+strings.ToLower(word))
	data, ok := b.cached(key)
	if !ok {
		prompt := "Give up to 5 single-word synonyms for the " + posName(pos) + " \"" + word + "\" " +
			"that preserve its meaning in ordinary business text. " +
			"Respond with a JSON array of lowercase words. Respond with [] if there are none."

		data, ok = b.chatJSON(ctx, "synonyms", prompt)
		if !ok {
			return nil
		}
		b.store(key, data)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil
	}

	var out []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || strings.EqualFold(w, word) || !isAlphabetic(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func posName(pos PartOfSpeech) string {
	switch pos {
	case POSNoun:
		return "noun"
	case POSVerb:
		return "verb"
	case POSAdjective:
		return "adjective"
	case POSAdverb:
		return "adverb"
	}
	return "word"
}

func isAlphabetic(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(w) > 0
}

// chatJSON performs one rate-limited completion call and extracts the JSON
// array from the response text
func (b *OpenAIBackend) chatJSON(ctx context.Context, capability, prompt string) ([]byte, bool) {
	if err := b.limiter.Wait(ctx, capability); err != nil {
		return nil, false
	}

	timeout := time.Duration(b.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := b.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := b.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an NLP annotation service. You respond with JSON only, no prose.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   512,
		Temperature: 0, // Annotation must be reproducible across calls
	})
	if err != nil || len(resp.Choices) == 0 {
		return nil, false
	}

	return extractJSONArray(resp.Choices[0].Message.Content)
}

// extractJSONArray pulls the first JSON array out of a completion, tolerating
// surrounding prose or code fences
func extractJSONArray(content string) ([]byte, bool) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, false
	}
	raw := content[start : end+1]
	if !json.Valid([]byte(raw)) {
		return nil, false
	}
	return []byte(raw), true
}

func (b *OpenAIBackend) cached(key string) ([]byte, bool) {
	if b.lookups == nil {
		return nil, false
	}
	return b.lookups.Get(key)
}

func (b *OpenAIBackend) store(key string, val []byte) {
	if b.lookups == nil {
		return
	}
	_ = b.lookups.Set(key, val, 0) // Default TTL
}
