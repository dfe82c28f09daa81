package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
)

// GeminiGateway calls the Gemini generateContent endpoint.
type GeminiGateway struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGateway returns a Gemini-backed gateway, or the disabled gateway when
// apiKey is empty.
func NewGateway(apiKey, model string) Gateway {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Disabled()
	}
	return NewGeminiGateway(apiKey, model, defaultGeminiBaseURL, nil)
}

// NewGeminiGateway constructs a client against baseURL. A nil httpClient gets
// a client whose timeout matches the responder's default bound.
func NewGeminiGateway(apiKey, model, baseURL string, httpClient *http.Client) *GeminiGateway {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GeminiGateway{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Generate answers a free-text question in the consultant persona.
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, consultantPrompt(prompt))
}

// GenerateContextualReply answers a buyer in the seller persona.
func (g *GeminiGateway) GenerateContextualReply(ctx context.Context, listing ListingSummary, userText string, turns []Turn) (string, error) {
	return g.generate(ctx, sellerPrompt(listing, userText, turns))
}

func (g *GeminiGateway) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 1024,
		},
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	if err := g.doJSON(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from gemini", ErrUnknown)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from gemini", ErrUnknown)
	}
	return text, nil
}

func (g *GeminiGateway) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func consultantPrompt(message string) string {
	var sb strings.Builder
	sb.WriteString("당신은 중고차 거래 플랫폼 CarMarket의 전문 상담사입니다.\n")
	sb.WriteString("사용자의 질문에 친절하고 전문적으로 답변해주세요.\n\n")
	fmt.Fprintf(&sb, "사용자 질문: %s\n\n", message)
	sb.WriteString("답변 원칙:\n")
	sb.WriteString("- 한국어로, 친근하면서도 전문적인 톤\n")
	sb.WriteString("- 중고차 구매와 판매에 실질적으로 도움이 되는 정보\n")
	sb.WriteString("- 안전한 거래를 위한 조언 포함\n")
	sb.WriteString("- 간결하게\n")
	return sb.String()
}

func sellerPrompt(listing ListingSummary, userText string, turns []Turn) string {
	var sb strings.Builder
	sb.WriteString("당신은 중고차 판매자입니다. 구매자와의 대화를 자연스럽게 이어가세요.\n\n")
	sb.WriteString("차량 정보:\n")
	fmt.Fprintf(&sb, "- 제목: %s\n", listing.Title)
	fmt.Fprintf(&sb, "- 가격: %d만원\n", listing.Price)
	fmt.Fprintf(&sb, "- 연식: %d년\n", listing.Year)
	fmt.Fprintf(&sb, "- 주행거리: %dkm\n", listing.Mileage)
	fmt.Fprintf(&sb, "- 위치: %s\n\n", listing.Location)

	if len(turns) > 0 {
		sb.WriteString("이전 대화:\n")
		for _, t := range turns {
			speaker := "판매자"
			if t.FromBuyer {
				speaker = "구매자"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, t.Text)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "구매자 메시지: %s\n\n", userText)
	sb.WriteString("대화 맥락을 이어서 1-3문장으로 친근하게 답하고, 가격이나 위치, 시승 가능 여부처럼 구체적인 정보를 알려주세요.\n")
	sb.WriteString("판매자로서의 답변:\n")
	return sb.String()
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
