package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// OpenAIConfig configures the responses-endpoint generator.
type OpenAIConfig struct {
	ResponsesURL string
	APIKey       string
	Model        string
	// RPS throttles outbound calls; commentary is flavor, a burst of quick
	// scoring events must not hammer the provider.
	RPS        float64
	HTTPClient *http.Client
}

// OpenAIGenerator calls an OpenAI-responses-style endpoint with a prompt
// built from the event summary and parses the output text back out.
type OpenAIGenerator struct {
	cfg     OpenAIConfig
	limiter *rate.Limiter
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.ResponsesURL == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	return &OpenAIGenerator{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// Enabled reports whether credentials are configured. A disabled generator
// lets the rest of the system run without commentary.
func (g *OpenAIGenerator) Enabled() bool { return g.cfg.APIKey != "" }

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return g.Invoke(ctx, BuildPrompt(req))
}

// Invoke sends one prompt through the responses endpoint and returns the
// output text. The foul-play analyzer shares this path with its own prompt.
func (g *OpenAIGenerator) Invoke(ctx context.Context, prompt string) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("commentary generator not configured")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("commentary throttle: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": g.cfg.Model,
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal commentary request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ResponsesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build commentary request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("commentary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("commentary request status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode commentary response: %w", err)
	}

	text := strings.TrimSpace(payload.OutputText)
	if text == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if t := strings.TrimSpace(content.Text); t != "" {
					text = t
					break
				}
			}
			if text != "" {
				break
			}
		}
	}
	if text == "" {
		return "", fmt.Errorf("commentary response missing output text")
	}
	return text, nil
}

// BuildPrompt renders the event summary as the commentator briefing.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an expert, high-energy Kabaddi commentator. Provide one short, punchy live-update line for the event below. Use the context to stay descriptive and consistent.\n\n")

	fmt.Fprintf(&b, "Score: %s %d - %d %s\n", req.RaidingTeam, req.Team1Score, req.Team2Score, req.DefendingTeam)
	fmt.Fprintf(&b, "Time remaining: %s\n", req.ClockDisplay)
	fmt.Fprintf(&b, "Consecutive empty raids for %s: %d\n", req.RaidingTeam, req.RaidCount)
	if len(req.RecentHistory) > 0 {
		b.WriteString("Recent commentary:\n")
		for _, line := range req.RecentHistory {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	} else {
		b.WriteString("The match is just getting started.\n")
	}

	fmt.Fprintf(&b, "\nEvent: %s\n", req.EventType)
	fmt.Fprintf(&b, "Raiding team: %s, raider: %s\n", req.RaidingTeam, req.RaiderName)
	fmt.Fprintf(&b, "Defending team: %s\n", req.DefendingTeam)
	if req.DefenderName != "" {
		fmt.Fprintf(&b, "Defender: %s\n", req.DefenderName)
	}
	fmt.Fprintf(&b, "Points scored: %d\n", req.Points)
	if req.IsSuperRaid {
		b.WriteString("This was a SUPER RAID!\n")
	}
	if req.IsDoOrDie {
		b.WriteString("This was a DO OR DIE raid!\n")
	}
	if req.IsLona {
		b.WriteString("A LONA was inflicted!\n")
	}
	if req.IsBonus {
		b.WriteString("A bonus point was taken.\n")
	}

	b.WriteString("\nRespond with the commentary line only.")
	return b.String()
}
