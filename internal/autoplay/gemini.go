package autoplay

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/sahilm/fuzzy"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/zones"
	"google.golang.org/api/option"
)

//go:embed prompts/choose_choice.txt
var chooseChoicePrompt string

var chooseTmpl = template.Must(template.New("choose_choice").Parse(chooseChoicePrompt))

// GeminiPlayer asks a Gemini model which choice to take. When the model
// fails or answers with something unusable it defers to a fallback.
type GeminiPlayer struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback Player
}

func NewGeminiPlayer(ctx context.Context, apiKey string, fallback Player) (*GeminiPlayer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if fallback == nil {
		fallback = NewRandomPlayer(nil)
	}
	return &GeminiPlayer{
		client:   client,
		model:    client.GenerativeModel("gemini-2.5-flash"),
		fallback: fallback,
	}, nil
}

func (p *GeminiPlayer) Close() {
	p.client.Close()
}

func (p *GeminiPlayer) Choose(ctx context.Context, quest engine.QuestView, realm models.Realm) (string, error) {
	prompt, err := choosePrompt(quest, realm)
	if err != nil {
		return "", err
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return p.fallback.Choose(ctx, quest, realm)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return p.fallback.Choose(ctx, quest, realm)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return p.fallback.Choose(ctx, quest, realm)
	}
	if label, ok := matchLabel(string(text), quest.Choices); ok {
		return label, nil
	}
	return p.fallback.Choose(ctx, quest, realm)
}

func choosePrompt(quest engine.QuestView, realm models.Realm) (string, error) {
	data := struct {
		RealmType   models.RealmType
		Zone        string
		Traits      []string
		Companions  []models.Companion
		Title       string
		Description string
		Choices     []string
	}{
		RealmType:   realm.RealmType,
		Zone:        zones.Title(realm.Zone()),
		Traits:      realm.TraitList(),
		Companions:  realm.Companions(),
		Title:       quest.Title,
		Description: quest.Description,
		Choices:     quest.Choices,
	}
	var buf bytes.Buffer
	if err := chooseTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// matchLabel maps a free-text model answer onto one of labels.
func matchLabel(answer string, labels []string) (string, bool) {
	answer = strings.TrimSpace(answer)
	answer = strings.Trim(answer, "\"'`.- ")
	if answer == "" {
		return "", false
	}
	for _, l := range labels {
		if strings.EqualFold(l, answer) {
			return l, true
		}
	}
	matches := fuzzy.Find(answer, labels)
	if len(matches) > 0 {
		return matches[0].Str, true
	}
	for _, l := range labels {
		if strings.Contains(strings.ToLower(answer), strings.ToLower(l)) {
			return l, true
		}
	}
	return "", false
}
