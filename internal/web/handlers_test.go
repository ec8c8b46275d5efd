package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/license"
	"github.com/rezmoss/sctk/internal/pathmatch"
	"github.com/rezmoss/sctk/internal/sysindex"
	"github.com/rezmoss/sctk/internal/version"
)

func newTestServer(t *testing.T, state *ServerState) (*httptest.Server, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	srv := httptest.NewServer(NewServer(state, log).Handler())
	t.Cleanup(srv.Close)
	return srv, hook
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHandleSimplify(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("simplifies expression", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/simplify", SimplifyRequest{Expression: "mit AND mit AND apache-2.0"})

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var got SimplifyResponse
		decode(t, resp, &got)
		if got.Simplified != "mit AND apache-2.0" {
			t.Errorf("expected mit AND apache-2.0, got %q", got.Simplified)
		}
	})

	t.Run("promotes exceptions first", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/simplify", SimplifyRequest{
			Expression:        "gpl-2.0 WITH classpath-exception-2.0 AND gpl-2.0 WITH classpath-exception-2.0",
			PromoteExceptions: true,
		})

		var got SimplifyResponse
		decode(t, resp, &got)
		if got.Simplified != "classpath-exception-2.0" {
			t.Errorf("expected classpath-exception-2.0, got %q", got.Simplified)
		}
	})

	t.Run("rejects malformed expression", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/simplify", SimplifyRequest{Expression: "(mit"})

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
		var got ErrorResponse
		decode(t, resp, &got)
		if got.Error == "" || got.Position == nil {
			t.Errorf("expected error with position, got %+v", got)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		resp := get(t, srv.URL+"/api/simplify")

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/simplify", "application/json", bytes.NewReader([]byte("{")))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestHandleMatch(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := json.RawMessage(`{
		"left": [{"path": "src/a/b.c"}, {"path": "src/none.c"}],
		"right": [{"path": "x/a/b.c", "pkg": "p"}],
		"key1": "path",
		"key2": "path"
	}`)
	resp := post(t, srv.URL+"/api/match", body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got TableResponse
	decode(t, resp, &got)

	if diff := cmp.Diff(pathmatch.Headers([]string{"path"}, []string{"path", "pkg"}, "path"), got.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	if v := got.Rows[0].Value(pathmatch.ColumnMatched); v != "x/a/b.c" {
		t.Errorf("expected match x/a/b.c, got %q", v)
	}
	if v := got.Rows[0].Value(pathmatch.ColumnScoreFromRight); v != "2" {
		t.Errorf("expected right score 2, got %q", v)
	}
	if v := got.Rows[1].Value(pathmatch.ColumnMatched); v != "" {
		t.Errorf("expected unmatched row, got %q", v)
	}

	t.Run("missing key column", func(t *testing.T) {
		resp := post(t, srv.URL+"/api/match", json.RawMessage(`{"left": [{"a": "x"}], "right": [{"a": "x"}], "key1": "path", "key2": "a"}`))

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestHandleLookup(t *testing.T) {
	t.Run("no index loaded", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		resp := get(t, srv.URL+"/api/lookup?path=/usr/bin/busybox")

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
	})

	t.Run("looks up paths", func(t *testing.T) {
		state := &ServerState{}
		state.SetIndex(sysindex.Index{"usr/bin/busybox": {"busybox"}})
		srv, _ := newTestServer(t, state)

		resp := get(t, srv.URL+"/api/lookup?path=/rootfs/usr/bin/busybox&path=/etc/passwd")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var got []sysindex.Match
		decode(t, resp, &got)
		want := []sysindex.Match{
			{Path: "/rootfs/usr/bin/busybox", Suffix: "usr/bin/busybox", Package: "busybox"},
			{Path: "/etc/passwd"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("path required", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		resp := get(t, srv.URL+"/api/lookup")

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestHandleEnrich(t *testing.T) {
	state := &ServerState{}
	srv, hook := newTestServer(t, state)

	resp := post(t, srv.URL+"/api/enrich", EnrichRequest{Expression: "mit"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without license data, got %d", resp.StatusCode)
	}

	state.SetCatalog(license.Catalog{
		"mit": {Key: "mit", ShortName: "MIT License", Category: "Permissive", AttributionRequired: true, SPDXKey: "MIT"},
	})

	resp = post(t, srv.URL+"/api/enrich", EnrichRequest{Expression: "mit"})
	var got license.Result
	decode(t, resp, &got)
	if got.Category != "Permissive" || got.SPDX != "MIT" || got.Attribution != license.Marked {
		t.Errorf("unexpected result %+v", got)
	}

	hook.Reset()
	resp = post(t, srv.URL+"/api/enrich", EnrichRequest{Expression: "unknown-key"})
	got = license.Result{}
	decode(t, resp, &got)
	if got != (license.Result{}) {
		t.Errorf("expected empty result, got %+v", got)
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("expected a warning for the unknown key")
	}
}

func TestHandleStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/stats?top=1", json.RawMessage(`[{"a": "1", "b": "x"}, {"a": "", "b": "x"}]`))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got analysis.TableStats
	decode(t, resp, &got)
	if got.Rows != 2 || len(got.Columns) != 2 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if got.Columns[0].Filled != 1 || got.Columns[1].Top[0].Count != 2 {
		t.Errorf("unexpected column stats %+v", got.Columns)
	}

	resp = post(t, srv.URL+"/api/stats?top=many", json.RawMessage(`[]`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleVersion(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := get(t, srv.URL+"/api/version")

	var got version.BuildInfo
	decode(t, resp, &got)
	if got.Version != version.Version {
		t.Errorf("expected version %s, got %s", version.Version, got.Version)
	}
}
