package smoobu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/luciodale/booking-portal-sub002/internal/calendar"
	"github.com/luciodale/booking-portal-sub002/internal/rates/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client reads the Smoobu rates endpoint. Every response is schema-validated
// before it is normalized; nothing is substituted for a missing price.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
	log      *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.Named("rates.smoobu"),
	}
}

type ratesResponse struct {
	Data map[string]map[string]rateDay `json:"data" validate:"required"`
}

type rateDay struct {
	Price           *json.Number `json:"price" validate:"omitempty,numeric"`
	MinLengthOfStay *int         `json:"min_length_of_stay" validate:"omitempty,min=1,max=365"`
	Available       *int         `json:"available" validate:"required,oneof=0 1"`
}

func (c *Client) FetchRates(ctx context.Context, req domain.Request) (domain.RateMap, error) {
	propertyID := strings.TrimSpace(req.ProviderPropertyID)
	if propertyID == "" {
		return nil, domain.ErrInvalidPropertyID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.Upstream("rate limiter", err)
	}

	q := url.Values{}
	q.Set("apartments[]", propertyID)
	q.Set("start_date", req.Start.String())
	q.Set("end_date", req.End.String())
	endpoint := c.baseURL + "/rates?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.Upstream("build request", err)
	}
	httpReq.Header.Set("Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, domain.Upstream("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.Upstream("read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("smoobu rates request rejected",
			zap.String("property_id", propertyID),
			zap.Int("status", resp.StatusCode))
		return nil, domain.Upstream(fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var payload ratesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.Upstream("decode body", err)
	}
	if err := c.validate.Struct(payload); err != nil {
		return nil, domain.Upstream("invalid payload", err)
	}

	days, ok := payload.Data[propertyID]
	if !ok {
		return nil, domain.Upstream("property missing from payload", nil)
	}

	return c.normalize(days)
}

func (c *Client) normalize(days map[string]rateDay) (domain.RateMap, error) {
	out := make(domain.RateMap, len(days))
	for key, day := range days {
		d, err := calendar.Parse(key)
		if err != nil {
			return nil, domain.Upstream("invalid date key "+key, err)
		}
		if err := c.validate.Struct(day); err != nil {
			return nil, domain.Upstream("invalid day "+key, err)
		}
		// no price configured for the night: leave a gap
		if day.Price == nil {
			continue
		}
		cents, err := MinorUnits(day.Price.String())
		if err != nil {
			return nil, domain.Upstream("invalid price on "+key, err)
		}
		minStay := 1
		if day.MinLengthOfStay != nil {
			minStay = *day.MinLengthOfStay
		}
		out[d.String()] = domain.RateDay{
			Price:     cents,
			MinStay:   minStay,
			Available: *day.Available == 1,
		}
	}
	return out, nil
}

// MinorUnits converts a decimal major-unit amount ("120", "99.5", "99.90")
// into integer cents without going through floating point.
func MinorUnits(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "-") || strings.ContainsAny(raw, "eE+") {
		return 0, fmt.Errorf("unsupported amount %q", raw)
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	if major > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("amount %q overflows minor units", raw)
	}
	return major*100 + minor, nil
}
