package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 5*time.Second, func() string { return "tok123" })
	if err != nil {
		t.Fatal(err)
	}
	return c, srv
}

func TestTranslateText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate-text" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q", got)
		}
		var req TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Text != "hi" || req.SourceLanguage != "english" || req.TargetLanguage != "spanish" || req.DurationSec != 1 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(Result{Success: true, Original: "hi", Translated: "hola"})
	})

	res, err := c.TranslateText(context.Background(), TextRequest{
		Text: "hi", SourceLanguage: "english", TargetLanguage: "spanish", DurationSec: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Translated != "hola" {
		t.Errorf("result = %+v", res)
	}
}

func TestUploadAudioMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("audio part: %v", err)
		}
		defer file.Close()
		if header.Filename != "audio.flac" {
			t.Errorf("filename = %q", header.Filename)
		}
		for key, want := range map[string]string{
			"speakerGender":  "female",
			"listenerGender": "male",
			"formality":      "formal",
			"sourceLanguage": "english",
			"targetLanguage": "spanish",
			"durationSec":    "5",
		} {
			if got := r.FormValue(key); got != want {
				t.Errorf("%s = %q, want %q", key, got, want)
			}
		}
		json.NewEncoder(w).Encode(Result{Success: true, Original: "hi", Translated: "hola"})
	})

	res, err := c.UploadAudio(context.Background(), AudioRequest{
		Audio:          []byte("fLaC..."),
		Format:         "flac",
		SourceLanguage: "english",
		TargetLanguage: "spanish",
		SpeakerGender:  "female",
		ListenerGender: "male",
		Formality:      "formal",
		DurationSec:    5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Errorf("result = %+v", res)
	}
}

func TestTranslateImageMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate-image" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if _, header, err := r.FormFile("image"); err != nil {
			t.Fatalf("image part: %v", err)
		} else if header.Filename != "photo.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(Result{Success: true, Original: "menu", Translated: "menú"})
	})

	res, err := c.TranslateImage(context.Background(), ImageRequest{
		Image: []byte{0xff, 0xd8}, SourceLanguage: "english", TargetLanguage: "spanish",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Translated != "menú" {
		t.Errorf("result = %+v", res)
	}
}

func TestFetchQuotaNormalization(t *testing.T) {
	for _, tt := range []struct {
		name        string
		body        string
		wantCredits int
		wantSeconds int // derived SecondsLeft
	}{
		{
			"current fields",
			`{"creditsLeft":4,"secondsAccumulated":15,"secsPerCredit":10,"remainingScans":2,"plan":"Starter"}`,
			4, 25,
		},
		{
			"interpretationsLeft revision",
			`{"interpretationsLeft":3,"secsPerCredit":10}`,
			3, 30,
		},
		{
			"remainingSeconds revision",
			`{"creditsLeft":5,"remainingSeconds":20}`,
			5, 20,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/user/quota" || r.Method != http.MethodGet {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})
			snap, err := c.FetchQuota(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if snap.CreditsLeft != tt.wantCredits {
				t.Errorf("CreditsLeft = %d, want %d", snap.CreditsLeft, tt.wantCredits)
			}
			if snap.SecondsLeft() != tt.wantSeconds {
				t.Errorf("SecondsLeft() = %d, want %d", snap.SecondsLeft(), tt.wantSeconds)
			}
		})
	}
}

func TestBuyPack(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/buy-pack" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["plan"] != "Starter" {
			t.Errorf("plan = %q", payload["plan"])
		}
		w.Write([]byte(`{"success":true,"quotas":{"credits":40,"scans":3}}`))
	})

	res, err := c.BuyPack(context.Background(), "Starter")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Quotas.Credits != 40 || res.Quotas.Scans != 3 {
		t.Errorf("result = %+v", res)
	}
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"token":"jwt-xyz"}`))
	})
	tok, err := c.Login(context.Background(), "a@b.c", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if tok != "jwt-xyz" {
		t.Errorf("token = %q", tok)
	}
}

func TestLoginFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"bad credentials"}`))
	})
	if _, err := c.Login(context.Background(), "a@b.c", "nope"); err == nil {
		t.Error("expected error")
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired"}`))
	})
	_, err := c.FetchQuota(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "token expired"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention %q", err, want)
	}
}
