package httpx_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/db"
	"cubedeck/internal/httpx"
	"cubedeck/internal/httpx/testutil"
	"cubedeck/internal/mqx"
	"cubedeck/internal/pagestore"
	"cubedeck/internal/scramble"
	"cubedeck/internal/store"
	"cubedeck/internal/theme"
	"cubedeck/internal/widget/builtin"
	"cubedeck/internal/widgetstate"
)

func newTestServer(t *testing.T) (*httpx.Server, *fiber.App) {
	t.Helper()
	dir := t.TempDir()
	sqldb, err := sql.Open("sqlite", "file:"+filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	durable := store.New(sqldb, db.DialectSQLite)
	ctx := context.Background()
	if err := durable.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pages := pagestore.New(durable)
	if err := pages.LoadPages(ctx); err != nil {
		t.Fatalf("load pages: %v", err)
	}

	builtin.ResetDefault()
	t.Cleanup(builtin.ResetDefault)

	srv := &httpx.Server{
		Pages:     pages,
		Store:     durable,
		Registry:  builtin.DefaultRegistry(),
		State:     widgetstate.New(widgetstate.NewFileBackend(filepath.Join(dir, "widget-states.json"))),
		Theme:     theme.NewStore(filepath.Join(dir, "theme.json")),
		Scrambles: scramble.NewGenerator(7),
		MQ:        mqx.NopPublisher{},
	}
	t.Cleanup(srv.Close)

	app := testutil.NewApp(srv.Register)
	return srv, app
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return res.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealth(t *testing.T) {
	_, app := newTestServer(t)
	status, env := do(t, app, http.MethodGet, "/health", nil)
	if status != http.StatusOK || env.Code != "OK" {
		t.Fatalf("health: %d %s", status, env.Code)
	}
}

func TestWidgetTypes(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/widget-types", nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var all []map[string]any
	decodeData(t, env, &all)
	if len(all) != 4 {
		t.Fatalf("want 4 core widget types, got %d", len(all))
	}

	status, env = do(t, app, http.MethodGet, "/api/v1/widget-types?category=stats", nil)
	if status != http.StatusOK {
		t.Fatalf("by category: %d", status)
	}
	var statsTypes []map[string]any
	decodeData(t, env, &statsTypes)
	if len(statsTypes) != 2 {
		t.Fatalf("want stats-card and solve-history, got %d", len(statsTypes))
	}

	status, _ = do(t, app, http.MethodGet, "/api/v1/widget-types/timer", nil)
	if status != http.StatusOK {
		t.Fatalf("get timer: %d", status)
	}
	status, env = do(t, app, http.MethodGet, "/api/v1/widget-types/nope", nil)
	if status != http.StatusNotFound || env.Code != "E_NOT_FOUND" {
		t.Fatalf("unknown type: %d %s", status, env.Code)
	}
}

func TestPageCRUD(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodPost, "/api/v1/pages",
		map[string]any{"name": "Practice"})
	if status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}
	var page struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		SortOrder int    `json:"sortOrder"`
	}
	decodeData(t, env, &page)
	if page.ID == "" || page.SortOrder != 1 {
		t.Fatalf("created page wrong: %+v", page)
	}

	// Missing name is invalid.
	status, env = do(t, app, http.MethodPost, "/api/v1/pages", map[string]any{})
	if status != http.StatusBadRequest || env.Code != "E_INVALID_PARAM" {
		t.Fatalf("empty name: %d %s", status, env.Code)
	}

	status, env = do(t, app, http.MethodPatch, "/api/v1/pages/"+page.ID,
		map[string]any{"name": "Renamed"})
	if status != http.StatusOK {
		t.Fatalf("update: %d", status)
	}
	var updated struct {
		Name string `json:"name"`
	}
	decodeData(t, env, &updated)
	if updated.Name != "Renamed" {
		t.Fatalf("rename lost: %+v", updated)
	}

	status, _ = do(t, app, http.MethodGet, "/api/v1/pages/"+page.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("get: %d", status)
	}
	status, env = do(t, app, http.MethodGet, "/api/v1/pages/missing", nil)
	if status != http.StatusNotFound || env.Code != "E_NOT_FOUND" {
		t.Fatalf("missing page: %d %s", status, env.Code)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/v1/pages/"+page.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	status, _ = do(t, app, http.MethodGet, "/api/v1/pages/"+page.ID, nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted page must 404, got %d", status)
	}
}

func TestWidgetLifecycleOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	_, env := do(t, app, http.MethodPost, "/api/v1/pages", map[string]any{"name": "Board"})
	var page struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &page)

	status, env := do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/widgets",
		map[string]any{
			"typeId":   "timer",
			"position": map[string]int{"x": 0, "y": 0, "width": 6, "height": 3},
		})
	if status != http.StatusCreated {
		t.Fatalf("add widget: %d", status)
	}
	var w struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &w)

	// Unknown widget types are rejected.
	status, env = do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/widgets",
		map[string]any{"typeId": "hologram"})
	if status != http.StatusBadRequest || env.Code != "E_INVALID_PARAM" {
		t.Fatalf("unknown type: %d %s", status, env.Code)
	}

	status, env = do(t, app, http.MethodPatch,
		"/api/v1/pages/"+page.ID+"/widgets/"+w.ID+"/config",
		map[string]any{"holdTime": 400})
	if status != http.StatusOK {
		t.Fatalf("update config: %d", status)
	}
	var cfgWidget struct {
		Config map[string]any `json:"config"`
	}
	decodeData(t, env, &cfgWidget)
	if cfgWidget.Config["holdTime"] != float64(400) {
		t.Fatalf("config not merged: %v", cfgWidget.Config)
	}

	// The merge persisted; a reload still has it.
	status, env = do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/reload", nil)
	if status != http.StatusOK {
		t.Fatalf("reload: %d", status)
	}
	var reloaded struct {
		Widgets []struct {
			Config map[string]any `json:"config"`
		} `json:"widgets"`
	}
	decodeData(t, env, &reloaded)
	if len(reloaded.Widgets) != 1 || reloaded.Widgets[0].Config["holdTime"] != float64(400) {
		t.Fatalf("merged config lost on reload: %+v", reloaded)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/v1/pages/"+page.ID+"/widgets/"+w.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("remove widget: %d", status)
	}
	status, _ = do(t, app, http.MethodDelete, "/api/v1/pages/"+page.ID+"/widgets/"+w.ID, nil)
	if status != http.StatusNotFound {
		t.Fatalf("removed widget must 404, got %d", status)
	}
}

func TestActivatePageMountsWidgets(t *testing.T) {
	srv, app := newTestServer(t)

	_, env := do(t, app, http.MethodPost, "/api/v1/pages", map[string]any{"name": "Live"})
	var page struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &page)
	do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/widgets",
		map[string]any{
			"typeId":   "scramble",
			"position": map[string]int{"width": 6, "height": 2},
		})
	do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/save", nil)

	status, _ := do(t, app, http.MethodPost, "/api/v1/pages/"+page.ID+"/activate", nil)
	if status != http.StatusOK {
		t.Fatalf("activate: %d", status)
	}
	rt := srv.Runtime()
	if rt == nil || rt.MountedCount() != 1 {
		t.Fatalf("activation must mount the page's widgets")
	}

	status, _ = do(t, app, http.MethodPost, "/api/v1/pages/missing/activate", nil)
	if status != http.StatusNotFound {
		t.Fatalf("activating a missing page must 404, got %d", status)
	}
}

func TestSolveLifecycleOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodPost, "/api/v1/solves", map[string]any{
		"duration":     12340,
		"scramble":     "R U R' U'",
		"scrambleType": "333",
		"tags":         []string{"pb-attempt"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create solve: %d", status)
	}
	var solve struct {
		ID        int64 `json:"id"`
		SessionID int64 `json:"sessionId"`
	}
	decodeData(t, env, &solve)
	if solve.ID == 0 || solve.SessionID == 0 {
		t.Fatalf("solve must get an id and an auto session: %+v", solve)
	}

	// Zero duration is invalid.
	status, _ = do(t, app, http.MethodPost, "/api/v1/solves", map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid solve: %d", status)
	}

	status, env = do(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/solves?session_id=%d", solve.SessionID), nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var listed []map[string]any
	decodeData(t, env, &listed)
	if len(listed) != 1 {
		t.Fatalf("want 1 solve, got %d", len(listed))
	}

	status, env = do(t, app, http.MethodPatch,
		fmt.Sprintf("/api/v1/solves/%d", solve.ID),
		map[string]any{"penalty": "+2", "comment": "slow F2L"})
	if status != http.StatusOK {
		t.Fatalf("update: %d", status)
	}
	var patched struct {
		Penalty string `json:"penalty"`
		Comment string `json:"comment"`
	}
	decodeData(t, env, &patched)
	if patched.Penalty != "+2" || patched.Comment != "slow F2L" {
		t.Fatalf("patch wrong: %+v", patched)
	}

	status, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/solves/%d", solve.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	status, _ = do(t, app, http.MethodGet, fmt.Sprintf("/api/v1/solves/%d", solve.ID), nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted solve must 404, got %d", status)
	}
}

func TestSessionStatsOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	_, env := do(t, app, http.MethodPost, "/api/v1/sessions",
		map[string]any{"name": "main", "event": "333"})
	var session struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &session)

	for _, ms := range []int{10000, 11000, 12000, 9000, 30000} {
		status, _ := do(t, app, http.MethodPost, "/api/v1/solves", map[string]any{
			"duration": ms, "scramble": "R U", "scrambleType": "333",
			"sessionId": session.ID,
		})
		if status != http.StatusCreated {
			t.Fatalf("seed solve: %d", status)
		}
	}

	status, env := do(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/sessions/%d/stats", session.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d", status)
	}
	var st struct {
		Count int    `json:"count"`
		Ao5   *int64 `json:"ao5"`
	}
	decodeData(t, env, &st)
	if st.Count != 5 {
		t.Fatalf("count wrong: %d", st.Count)
	}
	if st.Ao5 == nil || *st.Ao5 != 11000 {
		t.Fatalf("ao5 wrong: %v", st.Ao5)
	}

	status, env = do(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/sessions/%d/archive", session.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("archive: %d", status)
	}
	var archived struct {
		Archived bool `json:"archived"`
	}
	decodeData(t, env, &archived)
	if !archived.Archived {
		t.Fatalf("session must be archived")
	}
}

func TestTagsOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodPost, "/api/v1/tags",
		map[string]any{"name": "pb-attempt", "color": "#ff0000"})
	if status != http.StatusCreated {
		t.Fatalf("create: %d", status)
	}
	var tag struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &tag)

	status, env = do(t, app, http.MethodGet, "/api/v1/tags", nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var tags []map[string]any
	decodeData(t, env, &tags)
	if len(tags) != 1 {
		t.Fatalf("want 1 tag, got %d", len(tags))
	}

	status, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", tag.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
}

func TestWidgetStateOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/widget-state/w1", nil)
	if status != http.StatusNotFound {
		t.Fatalf("absent state must 404, got %d", status)
	}

	status, _ = do(t, app, http.MethodPut, "/api/v1/widget-state/w1",
		map[string]any{"scramble": "R U R' U'"})
	if status != http.StatusOK {
		t.Fatalf("put: %d", status)
	}

	status, env = do(t, app, http.MethodPatch, "/api/v1/widget-state/w1",
		map[string]any{"count": 3})
	if status != http.StatusOK {
		t.Fatalf("patch: %d", status)
	}
	var state map[string]any
	decodeData(t, env, &state)
	if state["scramble"] != "R U R' U'" || state["count"] != float64(3) {
		t.Fatalf("merge wrong: %v", state)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/v1/widget-state/w1", nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	status, _ = do(t, app, http.MethodGet, "/api/v1/widget-state/w1", nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted state must 404, got %d", status)
	}
}

func TestThemeOverHTTP(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/theme", nil)
	if status != http.StatusOK {
		t.Fatalf("get: %d", status)
	}
	var payload struct {
		Theme struct {
			Name string `json:"name"`
		} `json:"theme"`
		CSSVariables map[string]string `json:"cssVariables"`
	}
	decodeData(t, env, &payload)
	if payload.Theme.Name != "femtimer" || len(payload.CSSVariables) != 8 {
		t.Fatalf("default theme wrong: %+v", payload)
	}

	status, _ = do(t, app, http.MethodPut, "/api/v1/theme", map[string]any{
		"name": "midnight", "isDark": true,
		"colors": map[string]string{"primary": "#3366ff"},
	})
	if status != http.StatusOK {
		t.Fatalf("put: %d", status)
	}

	status, env = do(t, app, http.MethodPost, "/api/v1/theme/reset", nil)
	if status != http.StatusOK {
		t.Fatalf("reset: %d", status)
	}
	var reset struct {
		Name string `json:"name"`
	}
	decodeData(t, env, &reset)
	if reset.Name != "femtimer" {
		t.Fatalf("reset must restore default, got %s", reset.Name)
	}
}

func TestGenerateScramble(t *testing.T) {
	_, app := newTestServer(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/scrambles/333", nil)
	if status != http.StatusOK {
		t.Fatalf("scramble: %d", status)
	}
	var payload struct {
		Scramble  string `json:"scramble"`
		EventCode string `json:"eventCode"`
	}
	decodeData(t, env, &payload)
	if payload.Scramble == "" || payload.EventCode != "333" {
		t.Fatalf("payload wrong: %+v", payload)
	}
}

func TestSearchWithoutElasticsearch(t *testing.T) {
	_, app := newTestServer(t)

	// No ES configured: search degrades to an empty result, not an error.
	status, env := do(t, app, http.MethodGet, "/api/v1/search/solves?q=pll", nil)
	if status != http.StatusOK {
		t.Fatalf("search: %d", status)
	}
	var out map[string]any
	decodeData(t, env, &out)
	if _, ok := out["hits"]; !ok {
		t.Fatalf("want empty hits envelope: %v", out)
	}

	status, _ = do(t, app, http.MethodGet, "/api/v1/search/solves", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("missing q must be invalid, got %d", status)
	}
}
