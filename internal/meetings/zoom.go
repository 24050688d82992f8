// Package meetings creates remote video meetings via the Zoom API.
package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darisni/backend/config"
)

// Request describes the meeting to create. StartsAt must carry the session's
// timezone; Zoom receives the wall-clock time plus the IANA zone name.
type Request struct {
	Topic            string
	StartsAt         time.Time
	DurationMin      int
	HostVideo        bool
	ParticipantVideo bool
	WaitingRoom      bool
	MuteUponEntry    bool
	AutoRecording    string // "none", "local" or "cloud"
}

// Result holds the identifiers of a created meeting.
type Result struct {
	MeetingID string
	JoinURL   string
	StartURL  string
}

// ProviderError is a failed provider call: transport error, timeout, non-2xx
// status or a payload missing the meeting ID. All of them are retryable by
// the job layer; the client itself never retries.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("meeting provider: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("meeting provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ZoomClient calls the Zoom API with server-to-server OAuth. Tokens are
// cached until shortly before expiry.
type ZoomClient struct {
	cfg    config.ZoomConfig
	http   *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewZoomClient creates a Zoom API client with a bounded request timeout.
func NewZoomClient(cfg config.ZoomConfig, logger *zap.Logger) *ZoomClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoomClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"` // 2 = scheduled meeting
	StartTime string          `json:"start_time"`
	Timezone  string          `json:"timezone"`
	Duration  int             `json:"duration"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	HostVideo        bool   `json:"host_video"`
	ParticipantVideo bool   `json:"participant_video"`
	WaitingRoom      bool   `json:"waiting_room"`
	MuteUponEntry    bool   `json:"mute_upon_entry"`
	AutoRecording    string `json:"auto_recording"`
	JoinBeforeHost   bool   `json:"join_before_host"`
}

type createMeetingResponse struct {
	ID       json.Number `json:"id"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
}

// CreateMeeting creates a scheduled meeting owned by hostID (a Zoom user ID
// or email). It performs a single attempt; retry policy belongs to the
// caller.
func (c *ZoomClient) CreateMeeting(ctx context.Context, hostID string, req Request) (*Result, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	recording := req.AutoRecording
	if recording == "" {
		recording = "none"
	}
	body, err := json.Marshal(createMeetingRequest{
		Topic:     req.Topic,
		Type:      2,
		StartTime: req.StartsAt.Format("2006-01-02T15:04:05"),
		Timezone:  req.StartsAt.Location().String(),
		Duration:  req.DurationMin,
		Settings: meetingSettings{
			HostVideo:        req.HostVideo,
			ParticipantVideo: req.ParticipantVideo,
			WaitingRoom:      req.WaitingRoom,
			MuteUponEntry:    req.MuteUponEntry,
			AutoRecording:    recording,
		},
	})
	if err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: err}
	}

	endpoint := fmt.Sprintf("%s/users/%s/meetings", c.cfg.APIBaseURL, url.PathEscape(hostID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("zoom create meeting failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, &ProviderError{Op: "create meeting", StatusCode: resp.StatusCode}
	}

	var out createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProviderError{Op: "create meeting", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.ID.String() == "" || out.JoinURL == "" {
		return nil, &ProviderError{Op: "create meeting", Err: fmt.Errorf("response missing meeting id or join url")}
	}
	return &Result{
		MeetingID: out.ID.String(),
		JoinURL:   out.JoinURL,
		StartURL:  out.StartURL,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached account-credentials token, fetching a fresh
// one when missing or about to expire.
func (c *ZoomClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	endpoint := fmt.Sprintf("%s/oauth/token?grant_type=account_credentials&account_id=%s",
		c.cfg.AuthBaseURL, url.QueryEscape(c.cfg.AccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", &ProviderError{Op: "oauth token", Err: err}
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Op: "oauth token", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Op: "oauth token", StatusCode: resp.StatusCode}
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ProviderError{Op: "oauth token", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.AccessToken == "" {
		return "", &ProviderError{Op: "oauth token", Err: fmt.Errorf("response missing access token")}
	}
	c.token = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return c.token, nil
}
