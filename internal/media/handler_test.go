package media

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medialib/backend/internal/events"
	"github.com/medialib/backend/internal/models"
)

type capturingPublisher struct {
	events   []string
	payloads [][]byte
}

func (p *capturingPublisher) PublishMediaEvent(event string, payload []byte) error {
	p.events = append(p.events, event)
	p.payloads = append(p.payloads, payload)
	return nil
}

func setupAPI(t *testing.T) (*gin.Engine, *capturingPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pub := &capturingPublisher{}
	hub := events.NewHub(zap.NewNop(), pub, nil)
	h := NewHandler(NewMemoryStore(), hub, zap.NewNop())

	r := gin.New()
	api := r.Group("/api")
	api.POST("/media/upload", h.Create)
	api.GET("/media/stats", h.Stats)
	api.GET("/media/:id", h.GetByID)
	api.PUT("/media/:id/update", h.Update)
	api.DELETE("/media/:id/delete", h.Delete)
	api.GET("/medias", h.List)
	r.GET("/health", h.Health)
	return r, pub
}

func performRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeRecord(t *testing.T, body []byte) models.Record {
	t.Helper()
	var rec models.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decoding response %q: %v", body, err)
	}
	return rec
}

func createRecord(t *testing.T, r http.Handler, payload string) models.Record {
	t.Helper()
	w := performRequest(r, http.MethodPost, "/api/media/upload", []byte(payload))
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	return decodeRecord(t, w.Body.Bytes())
}

func TestCreateMediaRecord(t *testing.T) {
	r, pub := setupAPI(t)

	created := createRecord(t, r, `{"title":"clip","type":"video","size":2048}`)
	if created.ID() == "" {
		t.Fatal("created record has no id")
	}
	if created["title"] != "clip" || created["size"] != float64(2048) {
		t.Errorf("created record = %v", created)
	}

	w := performRequest(r, http.MethodGet, "/api/media/"+created.ID(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", w.Code, w.Body.String())
	}
	got := decodeRecord(t, w.Body.Bytes())
	if got.ID() != created.ID() || got["title"] != "clip" {
		t.Errorf("get returned %v, want %v", got, created)
	}

	if len(pub.events) != 1 || pub.events[0] != events.EventCreated {
		t.Errorf("published events = %v, want [%s]", pub.events, events.EventCreated)
	}
}

func TestCreateIgnoresCallerSuppliedID(t *testing.T) {
	r, _ := setupAPI(t)

	created := createRecord(t, r, `{"id":"forged","title":"clip"}`)
	if created.ID() == "forged" {
		t.Error("caller-supplied id was kept")
	}

	w := performRequest(r, http.MethodGet, "/api/media/forged", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get forged id returned %d, want 404", w.Code)
	}
}

func TestCreateRejectsBadBodies(t *testing.T) {
	r, pub := setupAPI(t)

	tests := []struct {
		name string
		body []byte
	}{
		{"malformed json", []byte(`{"title":`)},
		{"json array", []byte(`[1,2,3]`)},
		{"json string", []byte(`"clip"`)},
		{"empty body", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, http.MethodPost, "/api/media/upload", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("returned %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if resp["error"] == "" {
				t.Errorf("error body missing error field: %s", w.Body.String())
			}
		})
	}

	if len(pub.events) != 0 {
		t.Errorf("rejected requests published events: %v", pub.events)
	}
}

func TestGetMissingRecord(t *testing.T) {
	r, _ := setupAPI(t)

	w := performRequest(r, http.MethodGet, "/api/media/1755000000000000000", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("returned %d, want 404", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp["error"] != "media record not found" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestUpdateMergesFields(t *testing.T) {
	r, pub := setupAPI(t)

	created := createRecord(t, r, `{"title":"old","size":10}`)

	w := performRequest(r, http.MethodPut, "/api/media/"+created.ID()+"/update", []byte(`{"title":"new","codec":"h264"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}
	updated := decodeRecord(t, w.Body.Bytes())
	if updated["title"] != "new" || updated["codec"] != "h264" {
		t.Errorf("update returned %v", updated)
	}
	if updated["size"] != float64(10) {
		t.Errorf("untouched field was dropped: %v", updated)
	}
	if updated.ID() != created.ID() {
		t.Errorf("update changed id to %q", updated.ID())
	}

	// The merge is persisted, not just echoed.
	w = performRequest(r, http.MethodGet, "/api/media/"+created.ID(), nil)
	got := decodeRecord(t, w.Body.Bytes())
	if got["title"] != "new" || got["size"] != float64(10) {
		t.Errorf("get after update returned %v", got)
	}

	if len(pub.events) != 2 || pub.events[1] != events.EventUpdated {
		t.Errorf("published events = %v", pub.events)
	}
}

func TestUpdateEmptyObjectIsNoOp(t *testing.T) {
	r, _ := setupAPI(t)

	created := createRecord(t, r, `{"title":"clip"}`)

	w := performRequest(r, http.MethodPut, "/api/media/"+created.ID()+"/update", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}
	got := decodeRecord(t, w.Body.Bytes())
	if got["title"] != "clip" || got.ID() != created.ID() {
		t.Errorf("no-op update returned %v", got)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	r, _ := setupAPI(t)

	w := performRequest(r, http.MethodPut, "/api/media/1755000000000000000/update", []byte(`{"title":"x"}`))
	if w.Code != http.StatusNotFound {
		t.Errorf("returned %d, want 404", w.Code)
	}
}

func TestUpdateCannotChangeID(t *testing.T) {
	r, _ := setupAPI(t)

	created := createRecord(t, r, `{"title":"clip"}`)

	w := performRequest(r, http.MethodPut, "/api/media/"+created.ID()+"/update", []byte(`{"id":"hijack"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}
	got := decodeRecord(t, w.Body.Bytes())
	if got.ID() != created.ID() {
		t.Errorf("id changed to %q", got.ID())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	r, pub := setupAPI(t)

	created := createRecord(t, r, `{"title":"clip"}`)

	w := performRequest(r, http.MethodDelete, "/api/media/"+created.ID()+"/delete", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d: %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("delete returned a body: %s", w.Body.String())
	}

	w = performRequest(r, http.MethodGet, "/api/media/"+created.ID(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", w.Code)
	}

	// Deleting again is still a 204 but publishes nothing.
	w = performRequest(r, http.MethodDelete, "/api/media/"+created.ID()+"/delete", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("second delete returned %d, want 204", w.Code)
	}

	wantEvents := []string{events.EventCreated, events.EventDeleted}
	if len(pub.events) != len(wantEvents) {
		t.Fatalf("published events = %v, want %v", pub.events, wantEvents)
	}
	for i, e := range wantEvents {
		if pub.events[i] != e {
			t.Errorf("event[%d] = %q, want %q", i, pub.events[i], e)
		}
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	r, _ := setupAPI(t)

	first := createRecord(t, r, `{"title":"a"}`)
	second := createRecord(t, r, `{"title":"b"}`)
	third := createRecord(t, r, `{"title":"c"}`)

	w := performRequest(r, http.MethodDelete, "/api/media/"+second.ID()+"/delete", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", w.Code)
	}

	w = performRequest(r, http.MethodGet, "/api/medias", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d: %s", w.Code, w.Body.String())
	}
	var list []models.Record
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list has %d records, want 2", len(list))
	}
	if list[0].ID() != first.ID() || list[1].ID() != third.ID() {
		t.Errorf("list order = [%s %s], want [%s %s]", list[0].ID(), list[1].ID(), first.ID(), third.ID())
	}
}

func TestListEmptyIsJSONArray(t *testing.T) {
	r, _ := setupAPI(t)

	w := performRequest(r, http.MethodGet, "/api/medias", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestStatsCountsByType(t *testing.T) {
	r, _ := setupAPI(t)

	createRecord(t, r, `{"title":"a","type":"video"}`)
	createRecord(t, r, `{"title":"b","type":"video"}`)
	createRecord(t, r, `{"title":"c","type":"audio"}`)
	createRecord(t, r, `{"title":"d"}`)

	w := performRequest(r, http.MethodGet, "/api/media/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats returned %d: %s", w.Code, w.Body.String())
	}

	var stats struct {
		Total  int            `json:"total"`
		ByType map[string]int `json:"by_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ByType["video"] != 2 || stats.ByType["audio"] != 1 || stats.ByType[""] != 1 {
		t.Errorf("by_type = %v", stats.ByType)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupAPI(t)

	w := performRequest(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}
