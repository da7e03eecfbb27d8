// Package ipfs pins content through Pinata and reads it back from a
// gateway. Proof photos and governance comments live here; only their CIDs
// go on chain.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/proofofimpact/poi/internal/logging"
)

const (
	DefaultAPIURL     = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud"

	pinPath = "/pinning/pinFileToIPFS"

	// maxTextSize caps how much of a non-image object Fetch reads.
	maxTextSize = 8 << 20
)

// ErrNoCredential is returned by pinning calls when no Pinata JWT is set.
var ErrNoCredential = errors.New("pinata JWT not configured (set pinata_jwt or POI_PINATA_JWT)")

// ErrTooLarge is returned by Fetch for a text object over the read limit.
var ErrTooLarge = fmt.Errorf("object exceeds %d MiB", maxTextSize>>20)

// Client talks to the Pinata pinning API and an IPFS gateway.
type Client struct {
	JWT        string
	APIURL     string
	GatewayURL string

	http *http.Client
	log  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = logging.OrDiscard(l) }
}

// New returns a Client. Empty URLs fall back to Pinata's public endpoints.
func New(jwt, apiURL, gatewayURL string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	c := &Client{
		JWT:        strings.TrimSpace(jwt),
		APIURL:     strings.TrimRight(apiURL, "/"),
		GatewayURL: strings.TrimRight(gatewayURL, "/"),
		http:       &http.Client{Timeout: 60 * time.Second},
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pinResponse is Pinata's pinFileToIPFS reply.
type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Pin uploads r as filename and returns its CID.
func (c *Client) Pin(ctx context.Context, filename string, r io.Reader) (string, error) {
	return c.pin(ctx, filename, "application/octet-stream", r)
}

// PinText pins text as a plain-text comment.txt.
func (c *Client) PinText(ctx context.Context, text string) (string, error) {
	hash, err := c.pin(ctx, "comment.txt", "text/plain", strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("pinning text: %w", err)
	}
	return hash, nil
}

func (c *Client) pin(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if c.JWT == "" {
		return "", ErrNoCredential
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+pinPath, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.JWT)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata upload: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading pinata response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pinata upload failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out pinResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding pinata response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pinata response has no IpfsHash: %s", strings.TrimSpace(string(data)))
	}
	c.log.Info("pinned", "file", filename, "cid", out.IpfsHash, "size", out.PinSize)
	return out.IpfsHash, nil
}

// Content is what a gateway returned for a CID. Images carry only URL;
// anything else carries its body as Text.
type Content struct {
	ContentType string `json:"contentType"`
	Text        string `json:"text,omitempty"`
	URL         string `json:"url"`
}

// IsImage reports whether the content is an image.
func (c *Content) IsImage() bool {
	return strings.HasPrefix(c.ContentType, "image/")
}

// Fetch retrieves hash from the gateway.
func (c *Client) Fetch(ctx context.Context, hash string) (*Content, error) {
	hash = strings.TrimSpace(strings.TrimPrefix(hash, "ipfs://"))
	if hash == "" {
		return nil, errors.New("empty IPFS hash")
	}
	url := c.ImageURL(hash)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", hash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: gateway returned %s", hash, resp.Status)
	}

	content := &Content{ContentType: resp.Header.Get("Content-Type"), URL: url}
	if content.IsImage() {
		return content, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTextSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", hash, err)
	}
	if len(data) > maxTextSize {
		return nil, fmt.Errorf("reading %s: %w; open %s instead", hash, ErrTooLarge, url)
	}
	content.Text = string(data)
	return content, nil
}

// ImageURL is the gateway URL for hash.
func (c *Client) ImageURL(hash string) string {
	return c.GatewayURL + "/ipfs/" + hash
}
