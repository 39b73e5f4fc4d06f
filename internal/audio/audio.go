// Package audio fetches a track's audio source and decodes enough of it to confirm it plays and learn its length.
//
// [Probe] implements player.Loader. Sources are http(s) URLs, file:// URLs or plain paths. The container is
// chosen from the file extension, then the Content-Type, then the leading magic bytes. WAV, MP3 and FLAC are
// decoded with beep.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// DefaultMaxBytes bounds how much of a source is buffered for decoding.
const DefaultMaxBytes = 64 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSourceTooLarge    = errors.New("audio source too large")
)

// Format is an audio container.
type Format int

const (
	Unknown Format = iota
	WAV
	MP3
	FLAC
)

func (f Format) String() string {
	switch f {
	case WAV:
		return "wav"
	case MP3:
		return "mp3"
	case FLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// DetectFormat picks a container from name, then contentType, then the leading bytes of data.
func DetectFormat(name, contentType string, data []byte) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".wav", ".wave":
		return WAV
	case ".mp3":
		return MP3
	case ".flac":
		return FLAC
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "wav"):
		return WAV
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return MP3
	case strings.Contains(ct, "flac"):
		return FLAC
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return WAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FLAC
	case bytes.HasPrefix(data, []byte("ID3")):
		return MP3
	case len(data) > 1 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MP3
	}
	return Unknown
}

// readSeekNopCloser lets an in-memory buffer satisfy decoders that want a seekable ReadCloser.
type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

// Decode opens data as the given format and returns the stream and its format.
func Decode(f Format, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := readSeekNopCloser{bytes.NewReader(data)}
	switch f {
	case WAV:
		return wav.Decode(r)
	case MP3:
		return mp3.Decode(r)
	case FLAC:
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
}

// Length decodes data and returns its playing time.
func Length(f Format, data []byte) (time.Duration, error) {
	s, format, err := Decode(f, data)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	n := s.Len()
	if n <= 0 {
		return 0, nil
	}
	return format.SampleRate.D(n), nil
}

// ProbeOpts configures a [Probe].
type ProbeOpts struct {
	HTTPClient *http.Client
	MaxBytes   int64
	Logger     *log.Logger
}

// Probe loads audio sources and reports their duration.
type Probe struct {
	client   *http.Client
	maxBytes int64
	logger   *log.Logger
}

func NewProbe(opts ProbeOpts) *Probe {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Probe{
		client:   opts.HTTPClient,
		maxBytes: opts.MaxBytes,
		logger:   opts.Logger.With("component", "audio"),
	}
}

// Load fetches and decodes the track's audio source.
func (p *Probe) Load(ctx context.Context, track models.Track) (time.Duration, error) {
	if track.AudioURL == "" {
		return 0, fmt.Errorf("%w: %s has no audio source", shared.ErrTrackNotFound, track.ID)
	}

	data, contentType, err := p.fetch(ctx, track.AudioURL)
	if err != nil {
		return 0, err
	}

	name := track.AudioURL
	if u, err := url.Parse(track.AudioURL); err == nil {
		name = u.Path
	}

	f := DetectFormat(name, contentType, data)
	d, err := Length(f, data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", f, err)
	}
	p.logger.Debug("probed", "track", track.ID, "format", f, "duration", d)
	return d, nil
}

func (p *Probe) fetch(ctx context.Context, src string) ([]byte, string, error) {
	u, err := url.Parse(src)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return p.fetchHTTP(ctx, src)
	}

	name := src
	if err == nil && u.Scheme == "file" {
		name = u.Path
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio source: %w", err)
	}
	defer f.Close()

	data, err := p.readLimited(f)
	return data, "", err
}

func (p *Probe) fetchHTTP(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: audio source status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	data, err := p.readLimited(resp.Body)
	return data, resp.Header.Get("Content-Type"), err
}

func (p *Probe) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio source: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, p.maxBytes)
	}
	return data, nil
}
