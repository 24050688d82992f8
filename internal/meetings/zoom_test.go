package meetings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darisni/backend/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ZoomClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.ZoomConfig{
		AccountID:    "acc-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		APIBaseURL:   srv.URL,
		AuthBaseURL:  srv.URL,
		Timeout:      2 * time.Second,
	}
	return NewZoomClient(cfg, nil), srv
}

func tokenOK(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": "tok-123",
		"expires_in":   3600,
	})
}

func TestCreateMeetingSuccess(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)
	var gotBody map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			tokenOK(w)
		case "/users/teacher@example.com/meetings":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":        987654321,
				"join_url":  "https://zoom.example/j/987654321",
				"start_url": "https://zoom.example/s/987654321",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	res, err := client.CreateMeeting(context.Background(), "teacher@example.com", Request{
		Topic:       "Math - Sara with Ahmed",
		StartsAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, loc),
		DurationMin: 60,
		WaitingRoom: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "987654321", res.MeetingID)
	assert.Equal(t, "https://zoom.example/j/987654321", res.JoinURL)
	assert.Equal(t, "https://zoom.example/s/987654321", res.StartURL)

	assert.Equal(t, "2025-06-01T10:00:00", gotBody["start_time"])
	assert.Equal(t, "Asia/Riyadh", gotBody["timezone"])
	assert.Equal(t, float64(60), gotBody["duration"])
}

func TestCreateMeetingNon2xx(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenOK(w)
			return
		}
		http.Error(w, `{"code":1001,"message":"User does not exist"}`, http.StatusNotFound)
	})

	_, err := client.CreateMeeting(context.Background(), "ghost@example.com", Request{Topic: "x", StartsAt: time.Now(), DurationMin: 30})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusNotFound, perr.StatusCode)
}

func TestCreateMeetingMissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenOK(w)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"join_url": "https://zoom.example/j/1"})
	})

	_, err := client.CreateMeeting(context.Background(), "teacher@example.com", Request{Topic: "x", StartsAt: time.Now(), DurationMin: 30})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
}

func TestCreateMeetingTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenOK(w)
			return
		}
		time.Sleep(300 * time.Millisecond)
	})
	client.http.Timeout = 50 * time.Millisecond

	_, err := client.CreateMeeting(context.Background(), "teacher@example.com", Request{Topic: "x", StartsAt: time.Now(), DurationMin: 30})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
}

func TestTokenCached(t *testing.T) {
	tokenCalls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenCalls++
			tokenOK(w)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 1, "join_url": "https://zoom.example/j/1",
		})
	})

	for i := 0; i < 3; i++ {
		_, err := client.CreateMeeting(context.Background(), "t@example.com", Request{Topic: "x", StartsAt: time.Now(), DurationMin: 30})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, tokenCalls)
}
