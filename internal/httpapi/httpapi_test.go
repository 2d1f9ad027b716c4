package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netopscore/internal/analysis"
	"netopscore/internal/auth"
	"netopscore/internal/blobstore"
	"netopscore/internal/database"
	"netopscore/internal/deviceparser"
	"netopscore/internal/documents"
	"netopscore/internal/domain"
	"netopscore/internal/events"
	"netopscore/internal/foldertree"
	"netopscore/internal/httpapi"
	custommw "netopscore/internal/middleware"
	"netopscore/internal/projects"
	"netopscore/internal/store"
	"netopscore/internal/summary"
	"netopscore/internal/topology"
)

// testServer bundles a fully-wired httpapi.Server plus its admin user's
// bearer token, for handler tests that exercise real routing,
// middleware, and storage rather than mocking them away.
type testServer struct {
	srv      *httpapi.Server
	adminTok string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	mgr, err := database.Open(ctx, "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	db := mgr.DB()

	blobs, err := blobstore.New(db, t.TempDir())
	require.NoError(t, err)

	bus := events.New()
	t.Cleanup(func() { bus.Close() })

	folders := foldertree.New(db)
	docs := documents.New(db, blobs, folders)

	summarySvc := summary.New(db, blobs)
	deviceSvc := deviceparser.New(db)
	docs.OnConfigIngest = func(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error {
		if err := deviceSvc.Ingest(ctx, projectID, documentID, deviceName, content, sourceVersion); err != nil {
			return err
		}
		summarySvc.Invalidate(projectID)
		return nil
	}

	stubAdapter := analysis.AdapterFunc(func(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
		if in.Kind == domain.KindProjectTopology {
			draft := `{"nodes":[` +
				`{"id":"core-sw1","label":"core-sw1","role":"core"},` +
				`{"id":"dist-sw2","label":"dist-sw2","role":"distribution"},` +
				`{"id":"acc-sw3","label":"acc-sw3","role":"access"}` +
				`],"edges":[{"a":"core-sw1","b":"dist-sw2","evidence":"manual","type":"uplink"}]}`
			return analysis.AdapterOutput{AIDraftJSON: draft, AIDraftText: "topology generated"}, nil
		}
		return analysis.AdapterOutput{AIDraftJSON: `{"summary":"ok"}`, AIDraftText: "ok"}, nil
	})
	topo := topology.New(db)
	analysisCtl := analysis.New(db, blobs, bus, stubAdapter, topo, zap.NewNop().Sugar(), analysis.DefaultConfig())

	projectSvc := projects.New(db)

	jwtCfg := auth.DefaultJWTConfig()
	jwtCfg.Secret = []byte("test-secret-test-secret-123456!")
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	require.NoError(t, err)
	passwordSvc := auth.NewPasswordService(4)
	loginLimiter := custommw.NewLoginRateLimiter(1000, 1000)

	deps := httpapi.Deps{
		DB: db, Blobs: blobs,
		JWT: jwtSvc, Passwords: passwordSvc, LoginLimiter: loginLimiter,
		Projects: projectSvc, Folders: folders, Documents: docs,
		Analysis: analysisCtl, Topology: topo, Summary: summarySvc,
		MaxDeviceImageBytes: 1_500_000, Development: true,
		Log: zerolog.Nop(),
	}

	hash, err := passwordSvc.Hash("correct horse battery staple")
	require.NoError(t, err)
	admin := domain.User{Username: "admin", PasswordHash: hash, IsPlatformAdmin: true}
	require.NoError(t, store.CreateUser(ctx, db, admin))

	tok, _, err := jwtSvc.Issue(admin)
	require.NoError(t, err)

	cfg := httpapi.DefaultConfig()
	cfg.Development = true
	return &testServer{srv: httpapi.New(cfg, deps), adminTok: tok}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, path, token, folderID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if folderID != "" {
		require.NoError(t, w.WriteField("folder_id", folderID))
	}
	require.NoError(t, w.WriteField("who", "tester"))
	part, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
