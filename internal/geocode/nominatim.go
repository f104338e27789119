// Package geocode переводит адрес в координаты через Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrNoMatch адрес не найден
var ErrNoMatch = errors.New("address not found")

type Config struct {
	URL       string
	UserAgent string // Nominatim отклоняет запросы без User-Agent
	Timeout   time.Duration
}

// Nominatim клиент поиска OpenStreetMap
type Nominatim struct {
	cfg    Config
	client *fasthttp.Client
}

// New создаёт клиента; client == nil заменяется клиентом по умолчанию
func New(cfg Config, client *fasthttp.Client) *Nominatim {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if client == nil {
		client = &fasthttp.Client{
			Name:                cfg.UserAgent,
			MaxIdleConnDuration: time.Minute,
		}
	}
	return &Nominatim{cfg: cfg, client: client}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode возвращает координаты первого совпадения
func (n *Nominatim) Geocode(ctx context.Context, address string) (float64, float64, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.cfg.URL)
	req.URI().QueryArgs().Set("q", address)
	req.URI().QueryArgs().Set("format", "json")
	req.URI().QueryArgs().Set("limit", "1")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(n.cfg.UserAgent)

	timeout := n.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, 0, context.DeadlineExceeded
	}

	if err := n.client.DoTimeout(req, resp, timeout); err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, 0, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode())
	}

	var places []place
	if err := json.Unmarshal(resp.Body(), &places); err != nil {
		return 0, 0, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse lon: %w", err)
	}

	return lat, lng, nil
}
