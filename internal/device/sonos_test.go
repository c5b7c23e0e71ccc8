package device

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func soapResponse(action, inner string) string {
	return `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<s:Body><u:` + action + `Response xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1">` +
		inner + `</u:` + action + `Response></s:Body></s:Envelope>`
}

type recordedRequest struct {
	path       string
	soapAction string
	body       string
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

func newTestSonos(t *testing.T, respond func(r recordedRequest) (int, string)) (*Sonos, *requestLog) {
	t.Helper()
	log := &requestLog{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		req := recordedRequest{
			path:       r.URL.Path,
			soapAction: r.Header.Get("SOAPACTION"),
			body:       string(body),
		}
		log.add(req)
		status, payload := respond(req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	return NewSonos(parsed.Host), log
}

func TestSonosVolumeRoundTrip(t *testing.T) {
	sonos, requests := newTestSonos(t, func(r recordedRequest) (int, string) {
		if strings.Contains(r.soapAction, "GetVolume") {
			return http.StatusOK, soapResponse("GetVolume", "<CurrentVolume>37</CurrentVolume>")
		}
		return http.StatusOK, soapResponse("SetVolume", "")
	})

	volume, err := sonos.Volume(context.Background())
	require.NoError(t, err)
	require.Equal(t, 37, volume)

	require.NoError(t, sonos.SetVolume(context.Background(), 40))

	reqs := requests.all()
	require.Len(t, reqs, 2)
	require.Equal(t, "/MediaRenderer/RenderingControl/Control", reqs[0].path)
	require.Equal(t, `"urn:schemas-upnp-org:service:RenderingControl:1#GetVolume"`, reqs[0].soapAction)
	require.Contains(t, reqs[1].body, "<DesiredVolume>40</DesiredVolume>")
	require.Contains(t, reqs[1].body, "<Channel>Master</Channel>")
}

func TestSonosMuteFlag(t *testing.T) {
	sonos, requests := newTestSonos(t, func(r recordedRequest) (int, string) {
		if strings.Contains(r.soapAction, "GetMute") {
			return http.StatusOK, soapResponse("GetMute", "<CurrentMute>1</CurrentMute>")
		}
		return http.StatusOK, soapResponse("SetMute", "")
	})

	muted, err := sonos.Muted(context.Background())
	require.NoError(t, err)
	require.True(t, muted)

	require.NoError(t, sonos.SetMute(context.Background(), false))
	reqs := requests.all()
	require.Contains(t, reqs[1].body, "<DesiredMute>0</DesiredMute>")
}

func TestSonosTransportState(t *testing.T) {
	sonos, requests := newTestSonos(t, func(recordedRequest) (int, string) {
		return http.StatusOK, soapResponse("GetTransportInfo",
			"<CurrentTransportState>PLAYING</CurrentTransportState>")
	})

	transport, err := sonos.TransportState(context.Background())
	require.NoError(t, err)
	require.Equal(t, TransportPlaying, transport)
	require.True(t, transport.Playing())

	reqs := requests.all()
	require.Equal(t, "/MediaRenderer/AVTransport/Control", reqs[0].path)
	require.Equal(t, `"urn:schemas-upnp-org:service:AVTransport:1#GetTransportInfo"`, reqs[0].soapAction)
}

func TestSonosTransportCommands(t *testing.T) {
	sonos, requests := newTestSonos(t, func(recordedRequest) (int, string) {
		return http.StatusOK, soapResponse("Any", "")
	})

	ctx := context.Background()
	require.NoError(t, sonos.Play(ctx))
	require.NoError(t, sonos.Pause(ctx))
	require.NoError(t, sonos.Next(ctx))
	require.NoError(t, sonos.Previous(ctx))

	reqs := requests.all()
	require.Len(t, reqs, 4)
	require.Contains(t, reqs[0].body, "<Speed>1</Speed>")
	require.Contains(t, reqs[2].soapAction, "#Next")
	require.Contains(t, reqs[3].soapAction, "#Previous")
}

func TestSonosSurfacesHTTPFailure(t *testing.T) {
	sonos, _ := newTestSonos(t, func(recordedRequest) (int, string) {
		return http.StatusInternalServerError, "upnp error"
	})

	_, err := sonos.Volume(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetVolume")
}

func TestSonosRejectsMissingField(t *testing.T) {
	sonos, _ := newTestSonos(t, func(recordedRequest) (int, string) {
		return http.StatusOK, soapResponse("GetVolume", "")
	})

	_, err := sonos.Volume(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "CurrentVolume")
}
