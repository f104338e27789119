package geocode

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Nominatim {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	t.Cleanup(func() { _ = ln.Close() })

	go func() { _ = fasthttp.Serve(ln, handler) }()

	client := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	return New(Config{
		URL:       "http://geocoder.local/search",
		UserAgent: "tutor-market-test",
		Timeout:   time.Second,
	}, client)
}

func TestGeocode(t *testing.T) {
	var gotQuery, gotUA string
	n := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		gotQuery = string(ctx.QueryArgs().Peek("q"))
		gotUA = string(ctx.UserAgent())
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`[{"lat":"55.7558","lon":"37.6173","display_name":"Moscow"}]`)
	})

	lat, lng, err := n.Geocode(context.Background(), "Red Square")
	require.NoError(t, err)
	assert.InDelta(t, 55.7558, lat, 1e-9)
	assert.InDelta(t, 37.6173, lng, 1e-9)
	assert.Equal(t, "Red Square", gotQuery)
	assert.Equal(t, "tutor-market-test", gotUA)
}

func TestGeocode_NoMatch(t *testing.T) {
	n := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`[]`)
	})

	_, _, err := n.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestGeocode_BadStatus(t *testing.T) {
	n := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusForbidden)
	})

	_, _, err := n.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGeocode_ExpiredContext(t *testing.T) {
	n := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`[]`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, _, err := n.Geocode(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
