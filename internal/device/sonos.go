package device

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sonosControlPort = "1400"

	renderingControlPath    = "/MediaRenderer/RenderingControl/Control"
	renderingControlService = "urn:schemas-upnp-org:service:RenderingControl:1"
	avTransportPath         = "/MediaRenderer/AVTransport/Control"
	avTransportService      = "urn:schemas-upnp-org:service:AVTransport:1"
)

var _ Controller = (*Sonos)(nil)

// Sonos drives one Sonos zone player over its UPnP SOAP control endpoints.
type Sonos struct {
	baseURL string
	client  *http.Client
}

// NewSonos builds a controller for the speaker at addr. A bare IP gets the
// standard Sonos control port appended.
func NewSonos(addr string) *Sonos {
	host := addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		host = net.JoinHostPort(addr, sonosControlPort)
	}
	return &Sonos{
		baseURL: "http://" + host,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (s *Sonos) Volume(ctx context.Context) (int, error) {
	resp, err := s.call(ctx, renderingControlPath, renderingControlService, "GetVolume",
		"<InstanceID>0</InstanceID><Channel>Master</Channel>")
	if err != nil {
		return 0, err
	}
	raw, err := soapField(resp, "CurrentVolume")
	if err != nil {
		return 0, err
	}
	volume, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse volume %q: %w", raw, err)
	}
	return volume, nil
}

func (s *Sonos) SetVolume(ctx context.Context, volume int) error {
	body := fmt.Sprintf("<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredVolume>%d</DesiredVolume>", volume)
	_, err := s.call(ctx, renderingControlPath, renderingControlService, "SetVolume", body)
	return err
}

func (s *Sonos) Muted(ctx context.Context) (bool, error) {
	resp, err := s.call(ctx, renderingControlPath, renderingControlService, "GetMute",
		"<InstanceID>0</InstanceID><Channel>Master</Channel>")
	if err != nil {
		return false, err
	}
	raw, err := soapField(resp, "CurrentMute")
	if err != nil {
		return false, err
	}
	return raw == "1", nil
}

func (s *Sonos) SetMute(ctx context.Context, muted bool) error {
	flag := "0"
	if muted {
		flag = "1"
	}
	body := fmt.Sprintf("<InstanceID>0</InstanceID><Channel>Master</Channel><DesiredMute>%s</DesiredMute>", flag)
	_, err := s.call(ctx, renderingControlPath, renderingControlService, "SetMute", body)
	return err
}

func (s *Sonos) TransportState(ctx context.Context) (TransportState, error) {
	resp, err := s.call(ctx, avTransportPath, avTransportService, "GetTransportInfo",
		"<InstanceID>0</InstanceID>")
	if err != nil {
		return "", err
	}
	raw, err := soapField(resp, "CurrentTransportState")
	if err != nil {
		return "", err
	}
	return TransportState(raw), nil
}

func (s *Sonos) Play(ctx context.Context) error {
	_, err := s.call(ctx, avTransportPath, avTransportService, "Play",
		"<InstanceID>0</InstanceID><Speed>1</Speed>")
	return err
}

func (s *Sonos) Pause(ctx context.Context) error {
	_, err := s.call(ctx, avTransportPath, avTransportService, "Pause", "<InstanceID>0</InstanceID>")
	return err
}

func (s *Sonos) Next(ctx context.Context) error {
	_, err := s.call(ctx, avTransportPath, avTransportService, "Next", "<InstanceID>0</InstanceID>")
	return err
}

func (s *Sonos) Previous(ctx context.Context) error {
	_, err := s.call(ctx, avTransportPath, avTransportService, "Previous", "<InstanceID>0</InstanceID>")
	return err
}

// call posts one SOAP action envelope and returns the raw response body.
func (s *Sonos) call(ctx context.Context, path, service, action, arguments string) (string, error) {
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>`+
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`+
		`<s:Body><u:%[1]s xmlns:u="%[2]s">%[3]s</u:%[1]s></s:Body></s:Envelope>`,
		action, service, arguments)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(envelope))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf("%q", service+"#"+action))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: speaker returned %s", action, resp.Status)
	}
	return string(body), nil
}

// soapField extracts the text content of one element from a SOAP response.
// The control responses are flat single-namespace documents, so positional
// extraction is sufficient and avoids modeling every action's envelope.
func soapField(doc, field string) (string, error) {
	open := "<" + field + ">"
	closing := "</" + field + ">"
	start := strings.Index(doc, open)
	if start < 0 {
		return "", fmt.Errorf("response missing %s", field)
	}
	start += len(open)
	end := strings.Index(doc[start:], closing)
	if end < 0 {
		return "", fmt.Errorf("response missing %s terminator", field)
	}
	return strings.TrimSpace(doc[start : start+end]), nil
}
