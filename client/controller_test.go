package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"classfinder/models"
)

// recordingView keeps every call in order.
type recordingView struct {
	calls      []string
	week       int
	cards      []Card
	loginShown bool
	errMsg     string
	warning    string
	loginErr   string
}

func (v *recordingView) SetBusy(busy bool) {
	if busy {
		v.calls = append(v.calls, "busy")
	} else {
		v.calls = append(v.calls, "idle")
	}
}
func (v *recordingView) Clear() {
	v.calls = append(v.calls, "clear")
	v.cards, v.errMsg, v.warning = nil, "", ""
}
func (v *recordingView) ShowLogin() {
	v.calls = append(v.calls, "login")
	v.loginShown = true
}
func (v *recordingView) HideLogin() {
	v.calls = append(v.calls, "hide-login")
	v.loginShown = false
}
func (v *recordingView) ShowLoginError(msg string) {
	v.calls = append(v.calls, "login-error")
	v.loginErr = msg
}
func (v *recordingView) ShowError(msg string) {
	v.calls = append(v.calls, "error")
	v.errMsg = msg
}
func (v *recordingView) ShowWarning(msg string) {
	v.calls = append(v.calls, "warning")
	v.warning = msg
}
func (v *recordingView) ShowEmpty() {
	v.calls = append(v.calls, "empty")
}
func (v *recordingView) ShowCards(week int, cards []Card) {
	v.calls = append(v.calls, "cards")
	v.week, v.cards = week, cards
}

func (v *recordingView) has(call string) bool {
	for _, c := range v.calls {
		if c == call {
			return true
		}
	}
	return false
}

// fakeServer mimics the availability API.
type fakeServer struct {
	mu           sync.Mutex
	queryStatus  int
	loginStatus  int
	loginDetail  string
	noFallback   bool
	result       models.QueryResult
	queryBodies  []string
	requireLogin bool
	loggedIn     bool
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		b, _ := io.ReadAll(r.Body)
		f.queryBodies = append(f.queryBodies, string(b))

		if f.requireLogin {
			if _, err := r.Cookie("session"); err != nil {
				writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Detail: "Login required"})
				return
			}
		}
		if f.queryStatus != 0 && f.queryStatus != http.StatusOK {
			writeJSON(w, f.queryStatus, models.ErrorResponse{Detail: "portal exploded"})
			return
		}
		writeJSON(w, http.StatusOK, f.result)
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.loginStatus != 0 && f.loginStatus != http.StatusOK {
			writeJSON(w, f.loginStatus, models.ErrorResponse{Detail: f.loginDetail})
			return
		}
		f.loggedIn = true
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "t", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, models.LoginResponse{Status: "ok", Username: "u"})
	})
	mux.HandleFunc(DefaultFallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if f.noFallback {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, demoResult())
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func demoResult() models.QueryResult {
	return models.QueryResult{Week: 10, Buildings: []models.BuildingAvailability{
		{Building: "逸夫楼", BestRoom: models.RoomSlot{Room: "YF508", MaxFree: 14, TimeRange: "周六 第1节 - 周日 第7节"}},
	}}
}

func liveResult() models.QueryResult {
	return models.QueryResult{Week: 7, Buildings: []models.BuildingAvailability{
		{Building: "思源楼", BestRoom: models.RoomSlot{Room: "SY101", MaxFree: 7, TimeRange: "周一 第1节 - 周一 第7节"}},
		{Building: "机械楼", BestRoom: models.RoomSlot{Room: "JX112", MaxFree: 20, TimeRange: "周四 第1节 - 周六 第6节"}},
	}}
}

func setup(t *testing.T, f *fakeServer) (*Controller, *recordingView) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	api, err := NewAPIClient(srv.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	view := &recordingView{}
	return NewController(api, view, nil), view
}

func intPtr(n int) *int { return &n }

func TestQueryBodyCarriesWeekOnlyWhenGiven(t *testing.T) {
	f := &fakeServer{result: liveResult()}
	ctrl, _ := setup(t, f)

	ctrl.SubmitQuery(context.Background(), intPtr(7), false)
	ctrl.SubmitQuery(context.Background(), nil, false)

	if len(f.queryBodies) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(f.queryBodies))
	}
	if f.queryBodies[0] != `{"week":7}` {
		t.Fatalf("unexpected body %s", f.queryBodies[0])
	}
	if f.queryBodies[1] != `{}` {
		t.Fatalf("expected week to be omitted, got %s", f.queryBodies[1])
	}
}

func TestSuccessfulQueryRendersCards(t *testing.T) {
	ctrl, view := setup(t, &fakeServer{result: liveResult()})

	if got := ctrl.SubmitQuery(context.Background(), intPtr(7), false); got != Rendered {
		t.Fatalf("expected Rendered, got %v", got)
	}
	if view.week != 7 || len(view.cards) != 2 {
		t.Fatalf("unexpected render: week %d, %d cards", view.week, len(view.cards))
	}
	if c := view.cards[0]; c.Building != "思源楼" || c.Room != "SY101" || c.Fill != 0.5 {
		t.Fatalf("unexpected card %+v", c)
	}
	if view.cards[1].Fill != 1 {
		t.Fatalf("expected fill to cap at 1, got %v", view.cards[1].Fill)
	}
	if first, last := view.calls[0], view.calls[len(view.calls)-1]; first != "clear" || last != "idle" {
		t.Fatalf("unexpected call order %v", view.calls)
	}
}

func TestUnauthorizedShowsLoginNotResults(t *testing.T) {
	for _, initial := range []bool{true, false} {
		ctrl, view := setup(t, &fakeServer{requireLogin: true, result: liveResult()})
		if got := ctrl.SubmitQuery(context.Background(), nil, initial); got != LoginRequired {
			t.Fatalf("initial=%v: expected LoginRequired, got %v", initial, got)
		}
		if !view.loginShown {
			t.Fatalf("initial=%v: login prompt not shown", initial)
		}
		if view.has("cards") || view.has("empty") || view.has("error") || view.has("warning") {
			t.Fatalf("initial=%v: results area touched: %v", initial, view.calls)
		}
	}
}

func TestEmptyResultShowsPlaceholder(t *testing.T) {
	ctrl, view := setup(t, &fakeServer{result: models.QueryResult{Week: 3, Buildings: []models.BuildingAvailability{}}})
	ctrl.SubmitQuery(context.Background(), intPtr(3), false)
	if !view.has("empty") || view.has("cards") {
		t.Fatalf("expected placeholder, got %v", view.calls)
	}
}

func TestLoginReissuesPendingQuery(t *testing.T) {
	f := &fakeServer{requireLogin: true, result: liveResult()}
	ctrl, view := setup(t, f)

	ctrl.SubmitQuery(context.Background(), intPtr(7), false)
	outcome, err := ctrl.SubmitLogin(context.Background(), models.Credentials{Username: "u", Password: "p"})
	if err != nil || outcome != Rendered {
		t.Fatalf("SubmitLogin: %v, %v", outcome, err)
	}
	if view.loginShown {
		t.Fatal("login prompt still open")
	}
	if len(f.queryBodies) != 2 || f.queryBodies[1] != `{"week":7}` {
		t.Fatalf("expected the week 7 query to be repeated, got %v", f.queryBodies)
	}
	if len(view.cards) != 2 {
		t.Fatalf("expected results after login, got %v", view.calls)
	}
}

func TestLoginFailureShowsServerDetail(t *testing.T) {
	f := &fakeServer{loginStatus: http.StatusUnauthorized, loginDetail: "Login failed. Check credentials."}
	ctrl, view := setup(t, f)

	if _, err := ctrl.SubmitLogin(context.Background(), models.Credentials{Username: "u", Password: "bad"}); err == nil {
		t.Fatal("expected an error")
	}
	if view.loginErr != "Login failed. Check credentials." {
		t.Fatalf("unexpected login error %q", view.loginErr)
	}
	if len(f.queryBodies) != 0 {
		t.Fatal("query must not be repeated after a failed login")
	}

	f.mu.Lock()
	f.loginDetail = ""
	f.mu.Unlock()
	ctrl.SubmitLogin(context.Background(), models.Credentials{Username: "u", Password: "bad"})
	if view.loginErr != LoginFailedMessage {
		t.Fatalf("expected generic message, got %q", view.loginErr)
	}
}

func TestServerErrorFallsBackToDemoData(t *testing.T) {
	ctrl, view := setup(t, &fakeServer{queryStatus: http.StatusInternalServerError})

	if got := ctrl.SubmitQuery(context.Background(), nil, false); got != RenderedFallback {
		t.Fatalf("expected RenderedFallback, got %v", got)
	}
	if view.warning != FallbackWarning || len(view.cards) != 1 || view.cards[0].Room != "YF508" {
		t.Fatalf("unexpected view state %+v", view)
	}
}

func TestInitialLoadSuppressesWarningAndError(t *testing.T) {
	ctrl, view := setup(t, &fakeServer{queryStatus: http.StatusBadGateway})
	if got := ctrl.SubmitQuery(context.Background(), nil, true); got != RenderedFallback {
		t.Fatalf("expected RenderedFallback, got %v", got)
	}
	if view.has("warning") {
		t.Fatal("warning shown on initial load")
	}

	ctrl, view = setup(t, &fakeServer{queryStatus: http.StatusBadGateway, noFallback: true})
	if got := ctrl.SubmitQuery(context.Background(), nil, true); got != Failed {
		t.Fatalf("expected Failed, got %v", got)
	}
	if view.has("error") {
		t.Fatal("error shown on initial load")
	}
}

func TestBothFailingShowsQueryError(t *testing.T) {
	ctrl, view := setup(t, &fakeServer{queryStatus: http.StatusInternalServerError, noFallback: true})

	if got := ctrl.SubmitQuery(context.Background(), nil, false); got != Failed {
		t.Fatalf("expected Failed, got %v", got)
	}
	if !strings.HasPrefix(view.errMsg, QueryErrorPrefix) || !strings.Contains(view.errMsg, "portal exploded") {
		t.Fatalf("expected the query error, got %q", view.errMsg)
	}
	if view.has("cards") {
		t.Fatal("no cards expected")
	}
}

func TestUnreachableServerUsesFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.json")
	b, _ := json.Marshal(demoResult())
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	api, err := NewAPIClient(srv.URL, path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	view := &recordingView{}
	if got := NewController(api, view, nil).SubmitQuery(context.Background(), nil, false); got != RenderedFallback {
		t.Fatalf("expected RenderedFallback, got %v", got)
	}
	if len(view.cards) != 1 {
		t.Fatalf("expected demo card, got %v", view.calls)
	}
}

func TestViewsRenderCards(t *testing.T) {
	result := liveResult()

	var text bytes.Buffer
	NewController(nil, NewTextView(&text), nil).Render(&result)
	if out := text.String(); !strings.Contains(out, "第 7 周查询结果") || !strings.Contains(out, "SY101") || !strings.Contains(out, "█") {
		t.Fatalf("unexpected text output:\n%s", out)
	}

	var page bytes.Buffer
	hv := NewHTMLView(&page)
	NewController(nil, hv, nil).Render(&result)
	if err := hv.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out := page.String(); !strings.Contains(out, "width: 50%") || !strings.Contains(out, "思源楼") {
		t.Fatalf("unexpected html output:\n%s", out)
	}

	var doc bytes.Buffer
	jv := NewJSONView(&doc)
	NewController(nil, jv, nil).Render(&models.QueryResult{Week: 2})
	if err := jv.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.Contains(doc.String(), `"empty": true`) {
		t.Fatalf("unexpected json output: %s", doc.String())
	}
}
