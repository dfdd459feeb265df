package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal_content_agent/action"
	"personal_content_agent/calendar"
	"personal_content_agent/generator"
	"personal_content_agent/idempotency"
	"personal_content_agent/router"
	"personal_content_agent/workflow"
)

type countingMail struct{ calls atomic.Int32 }

func (m *countingMail) Send(context.Context, string, string, string) (string, error) {
	m.calls.Add(1)
	return "m", nil
}

type okCalendar struct{}

func (okCalendar) Create(context.Context, generator.EventDraft) (calendar.Created, error) {
	return calendar.Created{ID: "evt"}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *countingMail) {
	t.Helper()
	llm := generator.MockLLM{}
	agent, err := generator.NewAgent(llm)
	require.NoError(t, err)
	mail := &countingMail{}
	orch, err := workflow.New(workflow.Deps{
		Router:  router.New(llm, nil),
		Drafter: agent,
		Actions: &action.Executor{Mail: mail, Calendar: okCalendar{}, Keys: idempotency.NewMemoryStore()},
	})
	require.NoError(t, err)
	srv, err := New(orch, agent, nil, 0)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, mail
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestGetResponseEmailDraft(t *testing.T) {
	ts, mail := newTestServer(t)
	resp, out := post(t, ts.URL+"/get_response", `{"query":"send an email to bob@acme.io about the launch"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "email", out["route"])
	assert.Equal(t, "draft_generated", out["status"])
	output := out["output"].(map[string]any)
	draft := output["draft"].(map[string]any)
	assert.Equal(t, "Follow-up", draft["subject"])
	assert.Equal(t, int32(0), mail.calls.Load())
}

func TestGetResponseCompound(t *testing.T) {
	ts, mail := newTestServer(t)
	_, out := post(t, ts.URL+"/get_response", `{"query":"Schedule a meeting with John tomorrow at 3pm and email him the agenda"}`)
	assert.Equal(t, "compound", out["route"])
	assert.Equal(t, "compound_completed", out["status"])
	output := out["output"].(map[string]any)
	assert.Equal(t, "EMAIL_SENT", output["state"])
	assert.Equal(t, true, output["calendar"].(map[string]any)["success"])
	assert.Equal(t, true, output["email"].(map[string]any)["success"])
	assert.Equal(t, int32(1), mail.calls.Load())
}

func TestGetResponseProfileGuard(t *testing.T) {
	ts, _ := newTestServer(t)
	_, out := post(t, ts.URL+"/get_response", `{"query":"analyze my best performing post","file_path":null}`)
	assert.Equal(t, "profile-analytics", out["route"])
	assert.NotContains(t, out, "status")
	output := out["output"].(map[string]any)
	assert.Equal(t, false, output["success"])
	assert.Equal(t, workflow.MsgNoAnalyticsFile, output["error"])
}

func TestGetResponseUploadedFilePath(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, body := range []string{
		`{"query":"which is my best performing post?","uploaded_file_path":"/tmp/x.xlsx"}`,
		`{"query":"which is my best performing post?","file_path":"/tmp/x.xlsx"}`,
		`{"query":"which is my best performing post?","file_path":"","uploaded_file_path":"/tmp/x.xlsx"}`,
	} {
		_, out := post(t, ts.URL+"/get_response", body)
		assert.Equal(t, "profile-analytics", out["route"], body)
		output := out["output"].(map[string]any)
		// 通过了文件检查，测试服务器未配置分析器。
		assert.Equal(t, "profile analytics is not configured", output["error"], body)
	}
}

func TestGetResponseBadJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, out := post(t, ts.URL+"/get_response", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, genericFailure, out["message"])
	assert.NotEmpty(t, out["error"])
}

func TestSendEmail(t *testing.T) {
	ts, mail := newTestServer(t)

	_, out := post(t, ts.URL+"/send_email", `{}`)
	assert.Equal(t, map[string]any{"success": false, "error": "Draft missing"}, out["output"])

	body := `{"draft":{"to":"bob@acme.io","subject":"Launch","body":"hi"}}`
	_, out = post(t, ts.URL+"/send_email", body)
	assert.Equal(t, true, out["output"].(map[string]any)["success"])
	assert.Equal(t, "Email sent!", out["output"].(map[string]any)["message"])

	_, out = post(t, ts.URL+"/send_email", body)
	assert.Equal(t, map[string]any{"success": false, "message": "Email already sent!"}, out["output"])
	assert.Equal(t, int32(1), mail.calls.Load())
}

func TestCreateEventAndPostContent(t *testing.T) {
	ts, _ := newTestServer(t)

	_, out := post(t, ts.URL+"/create_event", `{}`)
	assert.Equal(t, map[string]any{"success": false, "error": "Event missing"}, out["output"])

	_, out = post(t, ts.URL+"/create_event", `{"event":{"summary":"Sync","start_datetime":"2025-01-01 10:00:00","end_datetime":"2025-01-01 11:00:00"}}`)
	assert.Equal(t, true, out["output"].(map[string]any)["success"])

	_, out = post(t, ts.URL+"/post_content", `{"content":"  "}`)
	assert.Equal(t, map[string]any{"success": false, "error": "Content missing"}, out["output"])

	// no publisher configured
	_, out = post(t, ts.URL+"/post_content", `{"content":"Hello"}`)
	assert.Equal(t, false, out["output"].(map[string]any)["success"])
}

func TestReviewSessionLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, created := post(t, ts.URL+"/api/sessions", `{"topic":"lessons from shipping Go services"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := created["session_id"].(string)
	require.NotEmpty(t, id)
	assert.Contains(t, created["draft"].(map[string]any)["content"], "lessons from shipping Go services")

	_, revised := post(t, ts.URL+"/api/sessions/"+id, `{"comment":"make it shorter"}`)
	assert.Len(t, revised["history"], 2)

	getResp, err := http.Get(ts.URL + "/api/sessions/" + id)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	missing, err := http.Get(ts.URL + "/api/sessions/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	bad, err := http.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(`{"topic":""}`))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)
	_, _ = post(t, ts.URL+"/get_response", `{"query":"write a linkedin post about testing"}`)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	assert.Contains(t, buf.String(), "assistant_routes_total")
}
