//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("PSYCHOBOT_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:8080"
}

type outMessage struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
	Scale int    `json:"scale"`
}

func TestSurveyJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	// Unique user id per run so reruns never collide with leftover sessions.
	userID := time.Now().UnixNano() % 1_000_000_000

	var health struct {
		OK      bool `json:"ok"`
		Surveys int  `json:"surveys"`
	}
	doGet(t, client, base+"/health", "", &health)
	if !health.OK {
		t.Fatalf("health: %+v", health)
	}
	if health.Surveys == 0 {
		t.Skip("no surveys loaded on the target server")
	}

	menu := sendEvent(t, client, base, map[string]any{"user_id": userID, "type": "set_locale", "locale": "ru"})
	if len(menu) == 0 || menu[0].Type != "notice" {
		t.Fatalf("menu messages: %+v", menu)
	}

	// The survey key is deployment-specific; take the first one from the
	// admin stats instead of hardcoding it.
	surveyKey := firstSurveyKey(t, client, base)

	sendEvent(t, client, base, map[string]any{"user_id": userID, "type": "choose", "survey_key": surveyKey})
	msgs := sendEvent(t, client, base, map[string]any{"user_id": userID, "type": "agree"})
	question := lastQuestion(msgs)
	if question == nil {
		t.Fatalf("agree did not yield a question: %+v", msgs)
	}

	for i := 0; i < 200; i++ {
		msgs = sendEvent(t, client, base, map[string]any{"user_id": userID, "type": "answer", "rating": 3})
		if q := lastQuestion(msgs); q != nil {
			continue
		}
		if len(msgs) > 0 && msgs[len(msgs)-1].Type == "summary" {
			return
		}
		t.Fatalf("unexpected messages mid-survey: %+v", msgs)
	}
	t.Fatalf("survey did not finish within 200 answers")
}

func firstSurveyKey(t *testing.T, client *http.Client, base string) string {
	t.Helper()
	var login struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/admin/login", "", map[string]string{
		"username": envOr("PSYCHOBOT_TEST_ADMIN_USER", "admin"),
		"password": os.Getenv("PSYCHOBOT_TEST_ADMIN_PASSWORD"),
	}, &login)
	if login.Token == "" {
		t.Fatalf("admin login did not return token")
	}

	var reload struct {
		OK      bool     `json:"ok"`
		Surveys int      `json:"surveys"`
		Issues  []string `json:"issues"`
	}
	doPost(t, client, base+"/api/admin/reload", login.Token, map[string]any{}, &reload)
	if !reload.OK || reload.Surveys == 0 {
		t.Fatalf("reload: %+v", reload)
	}

	var stats []struct {
		SurveyKey string `json:"survey_key"`
	}
	doGet(t, client, base+"/api/admin/stats", login.Token, &stats)
	key := envOr("PSYCHOBOT_TEST_SURVEY_KEY", "")
	if key == "" && len(stats) > 0 {
		key = stats[0].SurveyKey
	}
	if key == "" {
		t.Skip("no completed results to derive a survey key from; set PSYCHOBOT_TEST_SURVEY_KEY")
	}
	return key
}

func sendEvent(t *testing.T, client *http.Client, base string, ev map[string]any) []outMessage {
	t.Helper()
	var out struct {
		Messages []outMessage `json:"messages"`
	}
	doPost(t, client, base+"/api/chat/event", "", ev, &out)
	return out.Messages
}

func lastQuestion(msgs []outMessage) *outMessage {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == "question" {
			return &msgs[i]
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, out)
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, out)
}

func do(t *testing.T, client *http.Client, req *http.Request, out any) {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, req.URL, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", req.URL, err)
		}
	}
}
