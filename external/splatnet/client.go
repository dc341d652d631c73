package splatnet

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
	"github.com/yukinkling/splatoon-stats/internal/platform/resilience"
	"github.com/yukinkling/splatoon-stats/internal/usecase"
)

const (
	defaultBaseURL   = "https://app.splatoon2.nintendo.net/api"
	defaultUserAgent = "splatoon-stats/1.0"
	defaultLanguage  = "en-US"

	maxResponseBytes = 6 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	SessionCookie  string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the SplatNet ranking API. Requests are authenticated with
// the iksm_session cookie; a single fetch makes no retries because the whole
// pipeline re-runs on a schedule and retries windows naturally.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	sessionCookie  string
	userAgent      string
	acceptLanguage string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
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
	acceptLanguage := strings.TrimSpace(cfg.AcceptLanguage)
	if acceptLanguage == "" {
		acceptLanguage = defaultLanguage
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		sessionCookie:  strings.TrimSpace(cfg.SessionCookie),
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchLeagueRanking fetches the global ("ALL") ranking for one league
// window. leagueID is the window id plus the group-type suffix, e.g.
// "19021912T".
func (c *Client) FetchLeagueRanking(ctx context.Context, leagueID string) (usecase.ExternalLeagueRanking, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return usecase.ExternalLeagueRanking{}, fmt.Errorf("league id must not be empty")
	}

	var envelope leagueRankingEnvelope
	path := fmt.Sprintf("/league_match_ranking/%s/ALL", leagueID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalLeagueRanking{}, fmt.Errorf("fetch league ranking league_id=%s: %w", leagueID, err)
	}

	groupType, ok := ranking.GroupTypeFromKey(envelope.LeagueType.Key)
	if !ok {
		return usecase.ExternalLeagueRanking{}, fmt.Errorf("fetch league ranking league_id=%s: unknown league type %q", leagueID, envelope.LeagueType.Key)
	}

	out := usecase.ExternalLeagueRanking{
		LeagueID:  envelope.LeagueID,
		GroupType: groupType,
		StartTime: time.Unix(envelope.StartTime, 0).UTC(),
		Groups:    make([]usecase.ExternalLeagueGroup, 0, len(envelope.Rankings)),
	}
	if out.LeagueID == "" {
		out.LeagueID = leagueID
	}

	for _, group := range envelope.Rankings {
		members := make([]usecase.ExternalLeagueMember, 0, len(group.TagMembers))
		for _, member := range group.TagMembers {
			members = append(members, usecase.ExternalLeagueMember{
				PlayerID: strings.TrimSpace(member.PrincipalID),
				WeaponID: member.Weapon.ID,
				Cheater:  member.Cheater,
			})
		}
		out.Groups = append(out.Groups, usecase.ExternalLeagueGroup{
			GroupID: strings.TrimSpace(group.TagID),
			Rank:    group.Rank,
			Point:   group.Point,
			Cheater: group.Cheater,
			Members: members,
		})
	}

	return out, nil
}

// FetchXRankingPage fetches one page (100 players) of one rule's monthly X
// ranking. windowID is the YYMM01T00_YYMM01T00 pair.
func (c *Client) FetchXRankingPage(ctx context.Context, windowID, ruleKey string, page int) (usecase.ExternalXRankingPage, error) {
	windowID = strings.TrimSpace(windowID)
	ruleKey = strings.TrimSpace(ruleKey)
	if windowID == "" || ruleKey == "" {
		return usecase.ExternalXRankingPage{}, fmt.Errorf("window id and rule key must not be empty")
	}
	if page < 1 {
		return usecase.ExternalXRankingPage{}, fmt.Errorf("page must be greater than zero")
	}

	var envelope xRankingEnvelope
	path := fmt.Sprintf("/x_power_ranking/%s/%s", windowID, ruleKey)
	query := map[string]string{"page": strconv.Itoa(page)}
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return usecase.ExternalXRankingPage{}, fmt.Errorf("fetch x ranking window_id=%s rule=%s page=%d: %w", windowID, ruleKey, page, err)
	}

	out := usecase.ExternalXRankingPage{
		StartTime: time.Unix(envelope.StartTime, 0).UTC(),
		Entries:   make([]usecase.ExternalXRankingEntry, 0, len(envelope.TopRankings)),
	}
	for _, item := range envelope.TopRankings {
		out.Entries = append(out.Entries, usecase.ExternalXRankingEntry{
			PlayerID:   strings.TrimSpace(item.PrincipalID),
			PlayerName: item.Name,
			WeaponID:   item.Weapon.ID,
			Rank:       item.Rank,
			XPower:     item.XPower,
			Cheater:    item.Cheater,
		})
	}

	return out, nil
}

// FetchSplatfestRanking fetches the top-100 leaderboard of both teams of a
// finished Splatfest. The region only tags the result; SplatNet festival ids
// are already region-scoped.
func (c *Client) FetchSplatfestRanking(ctx context.Context, region string, splatfestID int64) (usecase.ExternalSplatfestRanking, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return usecase.ExternalSplatfestRanking{}, fmt.Errorf("region must not be empty")
	}
	if splatfestID <= 0 {
		return usecase.ExternalSplatfestRanking{}, fmt.Errorf("splatfest id must be greater than zero")
	}

	var envelope festivalRankingEnvelope
	path := fmt.Sprintf("/festivals/%d/rankings", splatfestID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalSplatfestRanking{}, fmt.Errorf("fetch splatfest ranking region=%s splatfest_id=%d: %w", region, splatfestID, err)
	}

	out := usecase.ExternalSplatfestRanking{
		Region:      region,
		SplatfestID: splatfestID,
		Entries:     make([]usecase.ExternalSplatfestEntry, 0, len(envelope.Rankings.Alpha)+len(envelope.Rankings.Bravo)),
	}
	out.Entries = append(out.Entries, mapFestivalSide("alpha", envelope.Rankings.Alpha)...)
	out.Entries = append(out.Entries, mapFestivalSide("bravo", envelope.Rankings.Bravo)...)

	return out, nil
}

func mapFestivalSide(team string, items []festivalRankingItem) []usecase.ExternalSplatfestEntry {
	out := make([]usecase.ExternalSplatfestEntry, 0, len(items))
	for _, item := range items {
		score := 0.0
		if item.Score != nil {
			score = *item.Score
		}
		out = append(out, usecase.ExternalSplatfestEntry{
			Team:       team,
			PlayerID:   strings.TrimSpace(item.Info.PrincipalID),
			PlayerName: item.Info.Nickname,
			WeaponID:   item.Info.Weapon.ID,
			Rank:       item.Order,
			Score:      score,
			Cheater:    item.Cheater,
		})
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "splatnet circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: ranking api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for key, value := range query {
			values.Set(key, value)
		}
		fullURL += "?" + values.Encode()
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode splatnet payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("User-Agent", c.userAgent)
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", "iksm_session="+c.sessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &usecase.UpstreamUnavailableError{StatusCode: resp.StatusCode, URL: fullURL}
		if !statusErr.NotFound() {
			c.logger.WarnContext(ctx, "splatnet request failed", "url", fullURL, "status", resp.StatusCode)
		}
		return nil, statusErr
	}

	return raw, nil
}

// A 4xx is an answer from the upstream, not an outage; only transport
// failures and 5xx responses count against the breaker.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *usecase.UpstreamUnavailableError
	if stderrors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
