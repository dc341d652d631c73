package splatoon2ink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
	"github.com/yukinkling/splatoon-stats/internal/usecase"
)

const (
	defaultBaseURL   = "https://splatoon2.ink/data"
	defaultUserAgent = "splatoon-stats/1.0"

	maxResponseBytes = 4 << 20
)

var festivalRegions = []string{"na", "eu", "jp"}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client reads the splatoon2.ink mirror, which republishes upcoming stage
// rotations and Splatfest schedules without SplatNet authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

type scheduleEnvelope struct {
	League []scheduleItem `json:"league"`
}

type scheduleItem struct {
	StartTime int64    `json:"start_time"`
	Rule      ruleRef  `json:"rule"`
	StageA    stageRef `json:"stage_a"`
	StageB    stageRef `json:"stage_b"`
}

type ruleRef struct {
	Key string `json:"key"`
}

type stageRef struct {
	ID int `json:"id,string"`
}

// FetchLeagueSchedules returns the mirror's current league rotation list,
// usually the next 12 two-hour slots.
func (c *Client) FetchLeagueSchedules(ctx context.Context) ([]usecase.ExternalLeagueSchedule, error) {
	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, "/schedules.json", &envelope); err != nil {
		return nil, fmt.Errorf("fetch league schedules: %w", err)
	}

	out := make([]usecase.ExternalLeagueSchedule, 0, len(envelope.League))
	for _, item := range envelope.League {
		if item.StartTime <= 0 || item.Rule.Key == "" {
			continue
		}
		out = append(out, usecase.ExternalLeagueSchedule{
			StartTime: time.Unix(item.StartTime, 0).UTC(),
			RuleKey:   item.Rule.Key,
			StageIDs:  []int{item.StageA.ID, item.StageB.ID},
		})
	}
	return out, nil
}

type festivalsEnvelope struct {
	NA festivalRegion `json:"na"`
	EU festivalRegion `json:"eu"`
	JP festivalRegion `json:"jp"`
}

type festivalRegion struct {
	Festivals []festivalItem `json:"festivals"`
}

type festivalItem struct {
	FestivalID int64         `json:"festival_id"`
	Times      festivalTimes `json:"times"`
	Names      festivalNames `json:"names"`
}

type festivalTimes struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type festivalNames struct {
	AlphaShort string `json:"alpha_short"`
	BravoShort string `json:"bravo_short"`
}

// FetchSplatfestSchedules returns every Splatfest the mirror knows about,
// across all three regions.
func (c *Client) FetchSplatfestSchedules(ctx context.Context) ([]usecase.ExternalSplatfestSchedule, error) {
	var envelope festivalsEnvelope
	if err := c.doJSON(ctx, "/festivals.json", &envelope); err != nil {
		return nil, fmt.Errorf("fetch splatfest schedules: %w", err)
	}

	regions := map[string]festivalRegion{
		"na": envelope.NA,
		"eu": envelope.EU,
		"jp": envelope.JP,
	}

	out := make([]usecase.ExternalSplatfestSchedule, 0, 32)
	for _, region := range festivalRegions {
		for _, item := range regions[region].Festivals {
			if item.FestivalID <= 0 || item.Times.Start <= 0 {
				continue
			}
			out = append(out, usecase.ExternalSplatfestSchedule{
				Region:      region,
				SplatfestID: item.FestivalID,
				StartTime:   time.Unix(item.Times.Start, 0).UTC(),
				EndTime:     time.Unix(item.Times.End, 0).UTC(),
				TeamAlpha:   strings.TrimSpace(item.Names.AlphaShort),
				TeamBravo:   strings.TrimSpace(item.Names.BravoShort),
			})
		}
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "splatoon2.ink request failed", "url", fullURL, "status", resp.StatusCode)
		return &usecase.UpstreamUnavailableError{StatusCode: resp.StatusCode, URL: fullURL}
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode mirror payload: %w", err)
	}
	return nil
}
