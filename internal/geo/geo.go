// Package geo resolves an approximate location for the location
// verification step. Three public IP geolocation services are tried in
// order; when all of them fail the fixed Paris location is used.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/Milo-adonos/SilentView/internal/pkg/httpx"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type Location struct {
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Flag      string  `json:"flag"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fallback is substituted silently when no provider answers.
var Fallback = Location{
	City:      "Paris",
	Region:    "Ile-de-France",
	Country:   "France",
	Flag:      "🇫🇷",
	Latitude:  48.8566,
	Longitude: 2.3522,
}

const globe = "🌍"

var countryFlags = map[string]string{
	"France":         "🇫🇷",
	"Belgium":        "🇧🇪",
	"Belgique":       "🇧🇪",
	"Switzerland":    "🇨🇭",
	"Suisse":         "🇨🇭",
	"Canada":         "🇨🇦",
	"United States":  "🇺🇸",
	"United Kingdom": "🇬🇧",
	"Germany":        "🇩🇪",
	"Allemagne":      "🇩🇪",
	"Spain":          "🇪🇸",
	"Espagne":        "🇪🇸",
	"Italy":          "🇮🇹",
	"Italie":         "🇮🇹",
	"Netherlands":    "🇳🇱",
	"Pays-Bas":       "🇳🇱",
	"Portugal":       "🇵🇹",
	"Luxembourg":     "🇱🇺",
	"Monaco":         "🇲🇨",
	"Morocco":        "🇲🇦",
	"Maroc":          "🇲🇦",
	"Algeria":        "🇩🇿",
	"Algerie":        "🇩🇿",
	"Tunisia":        "🇹🇳",
	"Tunisie":        "🇹🇳",
	"Senegal":        "🇸🇳",
	"Ivory Coast":    "🇨🇮",
	"Cote d'Ivoire":  "🇨🇮",
}

// Flag maps a country name to its flag glyph, the globe when unknown.
func Flag(country string) string {
	if f, ok := countryFlags[country]; ok {
		return f
	}
	return globe
}

// Provider looks up the location of ip, or of the caller when ip is empty.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Location, error)
}

// Detector is what the flow depends on: it never fails.
type Detector interface {
	Detect(ctx context.Context, ip string) Location
}

type Chain struct {
	log       *logger.Logger
	providers []Provider
	observe   func(provider string)
}

func NewChain(log *logger.Logger, providers ...Provider) *Chain {
	return &Chain{log: log.With("service", "GeoChain"), providers: providers}
}

// OnDetect registers fn to be told which provider answered, "fallback" when
// none did.
func (c *Chain) OnDetect(fn func(provider string)) *Chain {
	c.observe = fn
	return c
}

func (c *Chain) report(provider string) {
	if c.observe != nil {
		c.observe(provider)
	}
}

// Detect tries each provider once, in order, and returns the first success.
func (c *Chain) Detect(ctx context.Context, ip string) Location {
	ctx, span := otel.Tracer("silentview/geo").Start(ctx, "geo.Detect")
	defer span.End()

	for _, p := range c.providers {
		loc, err := p.Lookup(ctx, ip)
		if err == nil {
			span.SetAttributes(attribute.String("geo.provider", p.Name()))
			c.log.Debug("location detected", "provider", p.Name(), "country", loc.Country)
			c.report(p.Name())
			return loc
		}
		c.log.Warn("geo provider failed", "provider", p.Name(), "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	span.SetAttributes(attribute.String("geo.provider", "fallback"))
	c.log.Warn("all geolocation providers failed, using fallback location")
	c.report("fallback")
	return Fallback
}

type Config struct {
	IPAPIURL     string
	IPAPICoURL   string
	IPifyURL     string
	FreeIPAPIURL string
	Timeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.IPAPIURL == "" {
		c.IPAPIURL = "http://ip-api.com"
	}
	if c.IPAPICoURL == "" {
		c.IPAPICoURL = "https://ipapi.co"
	}
	if c.IPifyURL == "" {
		c.IPifyURL = "https://api.ipify.org"
	}
	if c.FreeIPAPIURL == "" {
		c.FreeIPAPIURL = "https://freeipapi.com"
	}
	if c.Timeout <= 0 {
		c.Timeout = 4 * time.Second
	}
	c.IPAPIURL = strings.TrimRight(c.IPAPIURL, "/")
	c.IPAPICoURL = strings.TrimRight(c.IPAPICoURL, "/")
	c.IPifyURL = strings.TrimRight(c.IPifyURL, "/")
	c.FreeIPAPIURL = strings.TrimRight(c.FreeIPAPIURL, "/")
	return c
}

// NewDefaultChain wires the three public providers in their fixed order.
func NewDefaultChain(log *logger.Logger, cfg Config) *Chain {
	cfg = cfg.withDefaults()
	hc := &http.Client{Timeout: cfg.Timeout}
	return NewChain(log,
		NewLimited(&IPAPI{BaseURL: cfg.IPAPIURL, HTTP: hc}, rate.NewLimiter(rate.Every(time.Minute/45), 45)),
		NewLimited(&IPAPICo{BaseURL: cfg.IPAPICoURL, HTTP: hc}, rate.NewLimiter(rate.Every(time.Minute/30), 30)),
		NewLimited(&FreeIPAPI{IPifyURL: cfg.IPifyURL, BaseURL: cfg.FreeIPAPIURL, HTTP: hc}, rate.NewLimiter(rate.Every(time.Minute/60), 60)),
	)
}

func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &httpx.StatusError{Op: "GET " + url, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func located(city, region, country string, lat, lon float64) (Location, error) {
	if strings.TrimSpace(country) == "" {
		return Location{}, fmt.Errorf("empty country")
	}
	return Location{
		City:      city,
		Region:    region,
		Country:   country,
		Flag:      Flag(country),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
