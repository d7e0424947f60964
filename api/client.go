// Package api is the HTTP client for the translation backend. It speaks
// the backend's wire format (JSON and multipart) and normalizes the
// quota payload, which drifted across backend revisions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nativo/quota"
)

// HTTPClient abstracts the Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenFunc supplies the current bearer token, or "" when logged out.
type TokenFunc func() string

type Client struct {
	baseURL    *url.URL
	httpClient HTTPClient
	token      TokenFunc
}

func NewClient(baseURL string, timeout time.Duration, token TokenFunc) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}, nil
}

// SetHTTPClient replaces the transport, for tests.
func (c *Client) SetHTTPClient(hc HTTPClient) { c.httpClient = hc }

// Result is the shared response shape of the three translate endpoints.
type Result struct {
	Success     bool   `json:"success"`
	Original    string `json:"original"`
	Translated  string `json:"translated"`
	TTSAudioURL string `json:"ttsAudioUrl"`
	Error       string `json:"error"`
}

type TextRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	SpeakerGender  string `json:"speakerGender"`
	ListenerGender string `json:"listenerGender"`
	Formality      string `json:"formality"`
	DurationSec    int    `json:"durationSec"`
}

type AudioRequest struct {
	Audio          []byte
	Format         string // "wav" or "flac"
	SourceLanguage string
	TargetLanguage string
	SpeakerGender  string
	ListenerGender string
	Formality      string
	DurationSec    int
}

type ImageRequest struct {
	Image          []byte
	Name           string // e.g. "photo.jpg"
	SourceLanguage string
	TargetLanguage string
}

// TranslateText submits raw text for translate -> TTS.
func (c *Client) TranslateText(ctx context.Context, req TextRequest) (*Result, error) {
	var out Result
	if err := c.doJSON(ctx, http.MethodPost, "/translate-text", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAudio submits captured audio for STT -> translate -> TTS.
func (c *Client) UploadAudio(ctx context.Context, req AudioRequest) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := "audio." + req.Format
	part, err := writer.CreateFormFile("audio", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, err
	}
	writer.WriteField("speakerGender", req.SpeakerGender)
	writer.WriteField("listenerGender", req.ListenerGender)
	writer.WriteField("formality", req.Formality)
	writer.WriteField("sourceLanguage", req.SourceLanguage)
	writer.WriteField("targetLanguage", req.TargetLanguage)
	writer.WriteField("durationSec", strconv.Itoa(req.DurationSec))
	writer.Close()

	var out Result
	if err := c.doMultipart(ctx, "/upload", &body, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranslateImage submits a photo for OCR -> translate.
func (c *Client) TranslateImage(ctx context.Context, req ImageRequest) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := req.Name
	if name == "" {
		name = "photo.jpg"
	}
	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, err
	}
	writer.WriteField("sourceLanguage", req.SourceLanguage)
	writer.WriteField("targetLanguage", req.TargetLanguage)
	writer.Close()

	var out Result
	if err := c.doMultipart(ctx, "/translate-image", &body, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// quotaPayload tolerates the field-name drift across backend revisions.
type quotaPayload struct {
	CreditsLeft         *int       `json:"creditsLeft"`
	InterpretationsLeft *int       `json:"interpretationsLeft"`
	SecondsAccumulated  int        `json:"secondsAccumulated"`
	SecsPerCredit       int        `json:"secsPerCredit"`
	RemainingSeconds    *int       `json:"remainingSeconds"`
	RemainingScans      int        `json:"remainingScans"`
	Plan                string     `json:"plan"`
	ExpiresAt           *time.Time `json:"expiresAt"`
}

// FetchQuota reads the balance. Implements quota.Fetcher.
func (c *Client) FetchQuota(ctx context.Context) (quota.Snapshot, error) {
	var p quotaPayload
	if err := c.doJSON(ctx, http.MethodGet, "/user/quota", nil, &p); err != nil {
		return quota.Snapshot{}, err
	}

	snap := quota.Snapshot{
		SecondsAccumulated: p.SecondsAccumulated,
		SecsPerCredit:      p.SecsPerCredit,
		RemainingScans:     p.RemainingScans,
		Plan:               p.Plan,
		ExpiresAt:          p.ExpiresAt,
	}
	switch {
	case p.CreditsLeft != nil:
		snap.CreditsLeft = *p.CreditsLeft
	case p.InterpretationsLeft != nil:
		snap.CreditsLeft = *p.InterpretationsLeft
	}
	if snap.SecsPerCredit <= 0 {
		snap.SecsPerCredit = 10
	}
	// Older revisions report a derived remainingSeconds instead of the
	// accumulated spend; recover the accumulated form from it.
	if p.RemainingSeconds != nil && p.SecondsAccumulated == 0 {
		acc := snap.CreditsLeft*snap.SecsPerCredit - *p.RemainingSeconds
		if acc < 0 {
			acc = 0
		}
		snap.SecondsAccumulated = acc
	}
	return snap, nil
}

// PurchaseResult carries the balances returned by a successful buy.
type PurchaseResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Quotas  struct {
		Credits int `json:"credits"`
		Scans   int `json:"scans"`
	} `json:"quotas"`
}

// BuyPack spends real money on a top-up bundle.
func (c *Client) BuyPack(ctx context.Context, plan string) (*PurchaseResult, error) {
	var out PurchaseResult
	payload := map[string]string{"plan": plan}
	if err := c.doJSON(ctx, http.MethodPost, "/buy-pack", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, body io.Reader, contentType string, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errPayload errorResponse
		if err := json.Unmarshal(data, &errPayload); err == nil && strings.TrimSpace(errPayload.Error) != "" {
			return fmt.Errorf("backend error %d: %s", resp.StatusCode, errPayload.Error)
		}
		return fmt.Errorf("backend error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
