package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-predictor/internal/models"
)

// NetkeibaClient implements RaceCardSource against a netkeiba-style JSON API.
type NetkeibaClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// netkeibaRace is a race card as served by the upstream API.
type netkeibaRace struct {
	ID             string          `json:"race_id"`
	Name           string          `json:"race_name"`
	Date           string          `json:"date"`
	Venue          string          `json:"venue"`
	CourseType     string          `json:"course_type"`
	Distance       int             `json:"distance"`
	TrackCondition string          `json:"track_condition"`
	Grade          string          `json:"grade"`
	Entries        []netkeibaEntry `json:"entries"`
}

// netkeibaEntry is one declared starter. Odds arrive as strings ("32.4")
// and body weight in the display form "482(+4)".
type netkeibaEntry struct {
	HorseID      string  `json:"horse_id"`
	HorseName    string  `json:"horse_name"`
	HorseNumber  int     `json:"horse_number"`
	PostPosition int     `json:"waku"`
	RunningStyle string  `json:"running_style"`
	Odds         *string `json:"odds"`
	Popularity   *int    `json:"popularity"`
	JockeyName   string  `json:"jockey"`
	BodyWeight   *string `json:"body_weight"`
}

// NewNetkeibaClient creates a race-card client for a netkeiba-style API.
func NewNetkeibaClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) *NetkeibaClient {
	return &NetkeibaClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchRaceCards retrieves every race card scheduled on the given date.
func (c *NetkeibaClient) FetchRaceCards(ctx context.Context, date time.Time) ([]RaceCard, error) {
	if !c.enabled {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "data source disabled", ErrSourceDisabled)
	}

	url := fmt.Sprintf("%s/api/race_cards?date=%s", c.baseURL, date.Format("2006-01-02"))

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var upstream []netkeibaRace
	if err := json.NewDecoder(body).Decode(&upstream); err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	cards := make([]RaceCard, 0, len(upstream))
	for _, raw := range upstream {
		card, err := c.convertRace(&raw)
		if err != nil {
			c.logger.WithField("race_id", raw.ID).WithError(err).Warn("Skipping unparseable race card")
			continue
		}
		cards = append(cards, *card)
	}

	return cards, nil
}

// FetchRaceCard retrieves a single race card by the provider's race ID.
func (c *NetkeibaClient) FetchRaceCard(ctx context.Context, sourceID string) (*RaceCard, error) {
	if !c.enabled {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "data source disabled", ErrSourceDisabled)
	}

	url := fmt.Sprintf("%s/api/race_cards/%s", c.baseURL, sourceID)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var raw netkeibaRace
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertRace(&raw)
}

// Name returns the data source name
func (c *NetkeibaClient) Name() string {
	return "netkeiba"
}

// IsEnabled returns whether this data source is enabled
func (c *NetkeibaClient) IsEnabled() bool {
	return c.enabled
}

func (c *NetkeibaClient) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, NewSourceError(c.Name(), ErrCodeNotFound, "race card not found", ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, NewSourceError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, NewSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, NewSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}

// convertRace normalizes an upstream race card into the engine model.
func (c *NetkeibaClient) convertRace(raw *netkeibaRace) (*RaceCard, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("race card missing race_id")
	}

	date, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		date = time.Now()
	}

	card := &RaceCard{
		SourceID: raw.ID,
		Race: models.RaceContext{
			RaceID:         raceUUID(c.Name(), raw.ID),
			Name:           raw.Name,
			Date:           date,
			Venue:          raw.Venue,
			CourseType:     models.CourseType(raw.CourseType),
			Distance:       raw.Distance,
			TrackCondition: models.TrackCondition(raw.TrackCondition),
			Grade:          raw.Grade,
		},
		Entries:   make([]models.EntryView, 0, len(raw.Entries)),
		FetchedAt: time.Now(),
	}

	for _, e := range raw.Entries {
		entry := models.EntryView{
			HorseID:      raceUUID(c.Name(), raw.ID+"/"+e.HorseID),
			HorseName:    e.HorseName,
			HorseNumber:  e.HorseNumber,
			PostPosition: e.PostPosition,
			RunningStyle: parseStyleTag(e.RunningStyle),
			JockeyName:   e.JockeyName,
		}

		if e.Odds != nil {
			if odds := parseOdds(*e.Odds); odds != nil {
				entry.Odds = odds.InexactFloat64()
			} else {
				c.logger.WithFields(logrus.Fields{
					"horse": e.HorseName,
					"odds":  *e.Odds,
				}).Warn("Failed to parse odds")
			}
		}
		if e.Popularity != nil {
			entry.Popularity = *e.Popularity
		}
		if e.BodyWeight != nil {
			entry.HorseWeight, entry.HorseWeightDiff = parseBodyWeight(*e.BodyWeight)
		}

		card.Entries = append(card.Entries, entry)
	}

	return card, nil
}

// styleTags maps upstream Japanese style tags to the engine's running styles.
var styleTags = map[string]models.RunningStyle{
	"逃げ": models.StyleEscape,
	"先行": models.StyleFront,
	"差し": models.StyleStalker,
	"追込": models.StyleCloser,
	"自在": models.StyleVersatile,
}

func parseStyleTag(raw string) models.RunningStyle {
	if style, ok := styleTags[strings.TrimSpace(raw)]; ok {
		return style
	}
	return models.ParseRunningStyle(raw)
}

// parseOdds parses decimal odds strings, returning nil if invalid.
func parseOdds(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "---" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.LessThan(decimal.NewFromInt(1)) {
		return nil
	}
	return &d
}

// parseBodyWeight parses the display form "482(+4)" into weight and delta.
// A first-start horse shows "計不" and yields zeros.
func parseBodyWeight(s string) (weight, diff int) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		fmt.Sscanf(s, "%d", &weight)
		return weight, 0
	}

	fmt.Sscanf(s[:open], "%d", &weight)
	inner := strings.TrimSuffix(s[open+1:], ")")
	fmt.Sscanf(strings.TrimPrefix(inner, "+"), "%d", &diff)
	return weight, diff
}

// raceUUID derives a stable UUID from a provider ID so refetches of the same
// race card resolve to the same rows.
func raceUUID(source, id string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("keiba-predictor/"+source+"/"+id))
}
