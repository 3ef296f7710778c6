package api

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"golang.org/x/text/encoding/japanese"

	"github.com/Sofia-Luceat-Project/os-browser/internal/assets"
	"github.com/Sofia-Luceat-Project/os-browser/internal/catalog"
	"github.com/Sofia-Luceat-Project/os-browser/internal/codec"
	"github.com/Sofia-Luceat-Project/os-browser/internal/events"
	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/models"
	"github.com/Sofia-Luceat-Project/os-browser/internal/pathres"
	"github.com/Sofia-Luceat-Project/os-browser/internal/search"
	"github.com/Sofia-Luceat-Project/os-browser/internal/settings"
	"github.com/Sofia-Luceat-Project/os-browser/internal/stats"
	"github.com/Sofia-Luceat-Project/os-browser/internal/terminal"
	"github.com/Sofia-Luceat-Project/os-browser/internal/testutil"
)

type testGateway struct {
	handler http.Handler
	root    string
	broker  *events.Broker
	fake    *testutil.FakePlatform
}

// testEnv wires every component against a temp directory tree. The
// directory is also the initial directory and the terminal's default cwd.
func testEnv(t *testing.T, terminalEnabled bool) *testGateway {
	t.Helper()

	root := t.TempDir()
	fake := &testutil.FakePlatform{RootDir: root, Shortcuts: map[string]string{}}

	resolver, err := pathres.New(fake, root)
	if err != nil {
		t.Fatalf("pathres.New: %v", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	store, err := settings.New(filepath.Join(t.TempDir(), "registry"))
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	ui, err := assets.New(fstest.MapFS{
		"index.html": {Data: []byte("<html>shell</html>")},
		"app.js":     {Data: []byte("boot()")},
	})
	if err != nil {
		t.Fatalf("assets.New: %v", err)
	}

	broker := events.NewBroker()
	t.Cleanup(broker.Close)

	h := NewHandler(Deps{
		Resolver:      resolver,
		Lister:        listing.New(resolver, 4),
		Codec:         codec.New(),
		Engine:        search.New(cat),
		Catalog:       cat,
		Settings:      store,
		Collector:     stats.New(),
		Executor:      terminal.New(fake, root, terminalEnabled),
		Broker:        broker,
		WatchDebounce: 20 * time.Millisecond,
	})
	return &testGateway{handler: NewGateway(h, ui), root: root, broker: broker, fake: fake}
}

func (g *testGateway) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	g.handler.ServeHTTP(w, req)
	return w
}

func (g *testGateway) path(name string) string {
	return filepath.Join(g.root, name)
}

func q(p string) string {
	return strings.ReplaceAll(p, string(filepath.Separator), "/")
}

func TestCORSHeaders(t *testing.T) {
	g := testEnv(t, true)

	w := g.do(t, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("status: code=%d body=%q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}

	w = g.do(t, http.MethodOptions, "/api/file/write", nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("preflight: code=%d body=%q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("allow-methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != DetectedEncodingHeader {
		t.Errorf("expose-headers = %q", got)
	}
}

func TestUnknownRoutes(t *testing.T) {
	g := testEnv(t, true)

	w := g.do(t, http.MethodGet, "/api/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("api 404: code=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("api 404 body = %q", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("404 should carry CORS headers")
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/terminal"},
		{http.MethodPost, "/api/files"},
		{http.MethodPost, "/api/file/read"},
	} {
		w := g.do(t, tc.method, tc.path, nil)
		if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"error"`) {
			t.Errorf("%s %s: code=%d body=%q", tc.method, tc.path, w.Code, w.Body.String())
		}
	}

	w = g.do(t, http.MethodGet, "/desktop/window/3", nil)
	if w.Code != http.StatusOK || w.Body.String() != "<html>shell</html>" {
		t.Errorf("spa fallback: code=%d body=%q", w.Code, w.Body.String())
	}

	w = g.do(t, http.MethodGet, "/app.js", nil)
	if w.Body.String() != "boot()" {
		t.Errorf("asset body = %q", w.Body.String())
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	g := testEnv(t, true)

	w := g.do(t, http.MethodGet, "/api/settings/paint", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "{}" {
		t.Fatalf("empty get: code=%d body=%q", w.Code, w.Body.String())
	}

	ch := g.broker.Subscribe()
	defer g.broker.Unsubscribe(ch)

	w = g.do(t, http.MethodPost, "/api/settings/paint", []byte(`{"x":1}`))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Fatalf("post: code=%d body=%q", w.Code, w.Body.String())
	}

	w = g.do(t, http.MethodGet, "/api/settings/paint", nil)
	if strings.TrimSpace(w.Body.String()) != `{"x":1}` {
		t.Errorf("get after post = %q", w.Body.String())
	}

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), `"appId":"paint"`) {
			t.Errorf("event = %q", msg)
		}
	case <-time.After(time.Second):
		t.Error("no settings.updated event")
	}
}

func TestSettingsRejectsBadInput(t *testing.T) {
	g := testEnv(t, true)

	if w := g.do(t, http.MethodPost, "/api/settings/paint", []byte(`[1,2]`)); w.Code != http.StatusBadRequest {
		t.Errorf("array body: code=%d", w.Code)
	}
	if w := g.do(t, http.MethodPost, "/api/settings/paint", []byte(`{bad`)); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: code=%d", w.Code)
	}
	if w := g.do(t, http.MethodGet, "/api/settings/..", nil); w.Code == http.StatusOK {
		t.Errorf("dot-dot id accepted: body=%q", w.Body.String())
	}
	if w := g.do(t, http.MethodPost, "/api/settings/a%20b", []byte(`{}`)); w.Code != http.StatusBadRequest {
		t.Errorf("space id: code=%d", w.Code)
	}
}

func TestListFiles(t *testing.T) {
	g := testEnv(t, true)
	testutil.WriteTree(t, g.root, map[string]string{"a.png": "png", "b.txt": "txt"})

	w := g.do(t, http.MethodGet, "/api/files?path="+q(g.root), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	var res models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.CurrentPath != g.root || len(res.Files) != 2 {
		t.Fatalf("listing = %+v", res)
	}
	for _, f := range res.Files {
		if f.Name == "a.png" && f.Extension != ".png" {
			t.Errorf("a.png extension = %q", f.Extension)
		}
	}
}

func TestListFilesDefaultsToInitialDir(t *testing.T) {
	g := testEnv(t, true)
	testutil.WriteTree(t, g.root, map[string]string{"only.txt": ""})

	for _, target := range []string{"/api/files", "/api/files?path=."} {
		w := g.do(t, http.MethodGet, target, nil)
		if !strings.Contains(w.Body.String(), "only.txt") {
			t.Errorf("%s: body=%s", target, w.Body.String())
		}
	}
}

func TestListFilesErrors(t *testing.T) {
	g := testEnv(t, true)

	w := g.do(t, http.MethodGet, "/api/files?path="+q(g.path("missing")), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing dir: code=%d", w.Code)
	}

	testutil.WriteTree(t, g.root, map[string]string{"f.txt": "x"})
	w = g.do(t, http.MethodGet, "/api/files?path="+q(g.path("f.txt")), nil)
	if w.Code < 400 || w.Code >= 500 {
		t.Errorf("listing a file should be a client error, got %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	g := testEnv(t, true)
	testutil.WriteTree(t, g.root, map[string]string{"a.png": "", "b.txt": ""})

	w := g.do(t, http.MethodGet, "/api/search?q=.png&path="+q(g.root), nil)
	var hits []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0]["name"] != "a.png" || hits[0]["type"] != "file" {
		t.Errorf("ext search = %v", hits)
	}

	w = g.do(t, http.MethodGet, "/api/search?q=app:calc", nil)
	hits = nil
	if err := json.Unmarshal(w.Body.Bytes(), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0]["type"] != "app" || hits[0]["name"] != "Calculator" || hits[0]["id"] != "calc" {
		t.Errorf("app search = %v", hits)
	}
}

func TestAppsForExtension(t *testing.T) {
	g := testEnv(t, true)

	w := g.do(t, http.MethodGet, "/api/apps/for-extension?ext=.png", nil)
	var apps []models.AppDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &apps); err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, a := range apps {
		ids[a.ID] = true
		if !a.ShowInContext {
			t.Errorf("%s is hidden from context menus", a.ID)
		}
	}
	if !ids["image"] || !ids["hex"] || ids["editor"] {
		t.Errorf("ids = %v", ids)
	}

	if w := g.do(t, http.MethodGet, "/api/apps/for-extension", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing ext: code=%d", w.Code)
	}
}

func TestListApps(t *testing.T) {
	g := testEnv(t, true)
	w := g.do(t, http.MethodGet, "/api/apps", nil)
	var apps map[string]models.AppDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &apps); err != nil {
		t.Fatal(err)
	}
	if apps["calc"].Name != "Calculator" {
		t.Errorf("apps = %v", apps)
	}
}

func TestWriteThenRead(t *testing.T) {
	g := testEnv(t, true)
	p := g.path("note.txt")
	content := "héllo wörld ✓\nline two"

	ch := g.broker.Subscribe()
	defer g.broker.Unsubscribe(ch)

	body, _ := json.Marshal(map[string]string{"content": content})
	w := g.do(t, http.MethodPost, "/api/file/write?path="+q(p), body)
	if w.Code != http.StatusOK {
		t.Fatalf("write: code=%d body=%s", w.Code, w.Body.String())
	}

	w = g.do(t, http.MethodGet, "/api/file/read?path="+q(p), nil)
	if w.Body.String() != content {
		t.Errorf("round trip = %q", w.Body.String())
	}
	if got := w.Header().Get(DetectedEncodingHeader); got != codec.DefaultEncoding {
		t.Errorf("detected = %q", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: file.written") {
			t.Errorf("event = %q", msg)
		}
	case <-time.After(time.Second):
		t.Error("no file.written event")
	}
}

func TestWriteRequiresContent(t *testing.T) {
	g := testEnv(t, true)
	w := g.do(t, http.MethodPost, "/api/file/write?path="+q(g.path("x.txt")), []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("code=%d", w.Code)
	}
	if _, err := os.Stat(g.path("x.txt")); !os.IsNotExist(err) {
		t.Error("file should not be created")
	}
}

func TestReadHex(t *testing.T) {
	g := testEnv(t, true)
	raw := []byte{0x00, 0xff, 0x10, 'A'}
	if err := os.WriteFile(g.path("bin.dat"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	w := g.do(t, http.MethodGet, "/api/file/read?encoding=hex&path="+q(g.path("bin.dat")), nil)
	if len(w.Body.String()) != 2*len(raw) {
		t.Fatalf("hex length = %d", len(w.Body.String()))
	}
	back, err := hex.DecodeString(w.Body.String())
	if err != nil || !bytes.Equal(back, raw) {
		t.Errorf("hex decode = %v, %v", back, err)
	}
}

func TestReadWithEncodingOverride(t *testing.T) {
	g := testEnv(t, true)
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("こんにちは世界、これはテストです。"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(g.path("sjis.txt"), sjis, 0o644); err != nil {
		t.Fatal(err)
	}

	w := g.do(t, http.MethodGet, "/api/file/read?encoding=Shift_JIS&path="+q(g.path("sjis.txt")), nil)
	if w.Body.String() != "こんにちは世界、これはテストです。" {
		t.Errorf("decoded = %q", w.Body.String())
	}
	if w.Header().Get(DetectedEncodingHeader) == "" {
		t.Error("detected encoding should always be reported")
	}

	w = g.do(t, http.MethodGet, "/api/file/read?encoding=klingon&path="+q(g.path("sjis.txt")), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown encoding: code=%d", w.Code)
	}
}

func TestReadErrors(t *testing.T) {
	g := testEnv(t, true)

	if w := g.do(t, http.MethodGet, "/api/file/read?path="+q(g.path("nope.txt")), nil); w.Code != http.StatusInternalServerError {
		t.Errorf("missing: code=%d", w.Code)
	}
	body, _ := json.Marshal(map[string]string{"content": "x"})
	w := g.do(t, http.MethodPost, "/api/file/write?path="+q(g.path(filepath.Join("nodir", "x.txt"))), body)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("write into missing dir: code=%d body=%q", w.Code, w.Body.String())
	}
	if w := g.do(t, http.MethodGet, "/api/file/read?path="+q(g.root), nil); w.Code != http.StatusBadRequest {
		t.Errorf("directory: code=%d", w.Code)
	}
}

func TestMedia(t *testing.T) {
	g := testEnv(t, true)
	data := []byte("0123456789")
	if err := os.WriteFile(g.path("pic.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	w := g.do(t, http.MethodGet, "/api/media?path="+q(g.path("pic.png")), nil)
	if !bytes.Equal(w.Body.Bytes(), data) {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/media?path="+q(g.path("pic.png")), nil)
	req.Header.Set("Range", "bytes=2-4")
	rw := httptest.NewRecorder()
	g.handler.ServeHTTP(rw, req)
	if rw.Code != http.StatusPartialContent || rw.Body.String() != "234" {
		t.Errorf("range: code=%d body=%q", rw.Code, rw.Body.String())
	}

	if w := g.do(t, http.MethodGet, "/api/media?path="+q(g.path("gone.png")), nil); w.Code != http.StatusNotFound {
		t.Errorf("missing: code=%d", w.Code)
	}
}

func TestResolveLink(t *testing.T) {
	g := testEnv(t, true)
	lnk := g.path("Docs.lnk")
	g.fake.Shortcuts[lnk] = g.path("docs")

	w := g.do(t, http.MethodGet, "/api/lnk/resolve?path="+q(lnk), nil)
	var res LinkResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Target != g.path("docs") {
		t.Errorf("target = %q", res.Target)
	}

	other := g.path("Other.lnk")
	w = g.do(t, http.MethodGet, "/api/lnk/resolve?path="+q(other), nil)
	res = LinkResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Target != other {
		t.Errorf("unresolvable target = %q, want identity", res.Target)
	}

	if w := g.do(t, http.MethodGet, "/api/lnk/resolve", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing path: code=%d", w.Code)
	}
}

func TestDrivesAndUserPaths(t *testing.T) {
	g := testEnv(t, true)
	g.fake.DriveList = []string{"C:\\", "D:\\"}

	w := g.do(t, http.MethodGet, "/api/system/drives", nil)
	var drives []string
	_ = json.Unmarshal(w.Body.Bytes(), &drives)
	if len(drives) != 2 || drives[1] != "D:\\" {
		t.Errorf("drives = %v", drives)
	}

	w = g.do(t, http.MethodGet, "/api/user-paths", nil)
	var paths map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &paths)
	if paths["os_root"] != g.root || paths["homedir"] == "" {
		t.Errorf("user paths = %v", paths)
	}
}

func TestStats(t *testing.T) {
	g := testEnv(t, true)
	w := g.do(t, http.MethodGet, "/api/stats", nil)
	var snap stats.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.CPU.Cores < 1 || snap.System.Platform != runtime.GOOS {
		t.Errorf("stats = %+v", snap)
	}
}

func TestTerminal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
	g := testEnv(t, true)

	body, _ := json.Marshal(TerminalRequest{Command: "echo out; echo err >&2; exit 1"})
	w := g.do(t, http.MethodPost, "/api/terminal", body)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d", w.Code)
	}
	var out terminal.Output
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Stdout != "out\n" || out.Stderr != "err\n" {
		t.Errorf("output = %+v", out)
	}

	if w := g.do(t, http.MethodPost, "/api/terminal", []byte(`{}`)); w.Code != http.StatusBadRequest {
		t.Errorf("empty command: code=%d", w.Code)
	}
}

func TestTerminalDisabled(t *testing.T) {
	g := testEnv(t, false)
	body, _ := json.Marshal(TerminalRequest{Command: "echo hi"})
	if w := g.do(t, http.MethodPost, "/api/terminal", body); w.Code != http.StatusForbidden {
		t.Errorf("code=%d", w.Code)
	}
}

func TestWatchRejectsNonDirectory(t *testing.T) {
	g := testEnv(t, true)
	testutil.WriteTree(t, g.root, map[string]string{"f.txt": ""})

	if w := g.do(t, http.MethodGet, "/api/watch?path="+q(g.path("f.txt")), nil); w.Code != http.StatusBadRequest {
		t.Errorf("file: code=%d", w.Code)
	}
	if w := g.do(t, http.MethodGet, "/api/watch?path="+q(g.path("gone")), nil); w.Code != http.StatusNotFound {
		t.Errorf("missing: code=%d", w.Code)
	}
}

func TestWatchStreamsChanges(t *testing.T) {
	g := testEnv(t, true)
	srv := httptest.NewServer(g.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/watch?path=" + q(g.root))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				_ = os.WriteFile(g.path("live.txt"), []byte("x"), 0o644)
			}
		}
	}()

	found := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "data: ") && strings.Contains(sc.Text(), "live.txt") {
				found <- sc.Text()
				return
			}
		}
	}()

	select {
	case line := <-found:
		if !strings.Contains(line, `"names":["live.txt"]`) {
			t.Errorf("event data = %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no dir.changed event")
	}
}
