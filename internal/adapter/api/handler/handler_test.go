package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"driveattach/internal/adapter/api"
	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/internal/usecase"
	"driveattach/pkg/errors"
)

type stubConfigRepo struct {
	cfg *entity.DriveConfig
}

func (r *stubConfigRepo) Get(ctx context.Context) (*entity.DriveConfig, error) {
	if r.cfg == nil {
		return nil, errors.NotFound("Drive configuration", nil)
	}
	return r.cfg, nil
}

func (r *stubConfigRepo) Save(ctx context.Context, cfg *entity.DriveConfig) error {
	r.cfg = cfg
	return nil
}

func (r *stubConfigRepo) Update(ctx context.Context, fields map[string]interface{}) error {
	return nil
}

type stubFileRepo struct {
	records map[string]*entity.FileRecord
	hooks   []repository.FileRecordHook
}

func newStubFileRepo() *stubFileRepo {
	return &stubFileRepo{records: map[string]*entity.FileRecord{}}
}

func (r *stubFileRepo) Create(ctx context.Context, rec *entity.FileRecord) error {
	r.records[rec.ID] = rec
	for _, hook := range r.hooks {
		hook(ctx, rec)
	}
	return nil
}

func (r *stubFileRepo) GetByID(ctx context.Context, id string) (*entity.FileRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("File record", nil)
	}
	return rec, nil
}

func (r *stubFileRepo) List(ctx context.Context) ([]*entity.FileRecord, error) {
	var records []*entity.FileRecord
	for _, rec := range r.records {
		records = append(records, rec)
	}
	return records, nil
}

func (r *stubFileRepo) UpdateOffloaded(ctx context.Context, id, fileURL, driveFileID string) error {
	if rec, ok := r.records[id]; ok {
		rec.FileURL = fileURL
		rec.DriveFileID = driveFileID
	}
	return nil
}

func (r *stubFileRepo) Delete(ctx context.Context, id string) error {
	delete(r.records, id)
	return nil
}

func (r *stubFileRepo) AfterInsert(hook repository.FileRecordHook)  { r.hooks = append(r.hooks, hook) }
func (r *stubFileRepo) BeforeDelete(hook repository.FileRecordHook) {}

type stubDrive struct {
	content     []byte
	downloadErr error
	connErr     error
}

func (d *stubDrive) Upload(ctx context.Context, content io.Reader, fileName, entityType, entityID string) (*entity.RemoteFile, error) {
	return &entity.RemoteFile{
		ID:          "drive-1",
		Name:        fileName,
		WebViewLink: "https://drive.google.com/file/d/drive-1/view",
	}, nil
}

func (d *stubDrive) Download(ctx context.Context, fileID string) (*bytes.Reader, error) {
	if d.downloadErr != nil {
		return nil, d.downloadErr
	}
	return bytes.NewReader(d.content), nil
}

func (d *stubDrive) GetMetadata(ctx context.Context, fileID string) (*entity.RemoteFile, error) {
	return nil, nil
}

func (d *stubDrive) Delete(ctx context.Context, fileID string) error { return nil }

func (d *stubDrive) TestConnection(ctx context.Context) error { return d.connErr }

type stubLocalStore struct {
	files map[string][]byte
}

func newStubLocalStore() *stubLocalStore {
	return &stubLocalStore{files: map[string][]byte{}}
}

func (s *stubLocalStore) Exists(fileURL string, isPrivate bool) bool {
	_, ok := s.files[fileURL]
	return ok
}

func (s *stubLocalStore) Open(fileURL string, isPrivate bool) (io.ReadCloser, error) {
	content, ok := s.files[fileURL]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", fileURL)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *stubLocalStore) Remove(fileURL string, isPrivate bool) error {
	delete(s.files, fileURL)
	return nil
}

func (s *stubLocalStore) Save(content io.Reader, fileName string, isPrivate bool) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	fileURL := "/files/" + fileName
	if isPrivate {
		fileURL = "/private/files/" + fileName
	}
	s.files[fileURL] = data
	return fileURL, nil
}

type stubDocs struct{}

func (stubDocs) SetField(ctx context.Context, entityType, entityID, field string, value interface{}) error {
	return nil
}

type stubAuthorizer struct{}

func (stubAuthorizer) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (stubAuthorizer) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{RefreshToken: "refresh-1"}, nil
}

type fixture struct {
	echo       *echo.Echo
	files      *stubFileRepo
	store      *stubLocalStore
	drive      *stubDrive
	cfg        *entity.DriveConfig
	attachment *AttachmentHandler
	admin      *DriveAdminHandler
}

func newFixture(t *testing.T, cfg *entity.DriveConfig) *fixture {
	t.Helper()

	e := echo.New()
	e.Validator = api.NewValidator()

	files := newStubFileRepo()
	store := newStubLocalStore()
	drive := &stubDrive{}
	configs := usecase.NewConfigUseCase(&stubConfigRepo{cfg: cfg})

	lifecycle := usecase.NewLifecycleUseCase(files, stubDocs{}, drive, configs, store, nil, nil)
	files.AfterInsert(lifecycle.OnFileCreated)

	auth := usecase.NewAuthUseCase(configs, stubAuthorizer{})

	return &fixture{
		echo:       e,
		files:      files,
		store:      store,
		drive:      drive,
		cfg:        cfg,
		attachment: NewAttachmentHandler(files, lifecycle, store),
		admin:      NewDriveAdminHandler(auth, lifecycle, configs, drive),
	}
}

func (f *fixture) request(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return f.echo.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestPing(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodGet, "/v1/admin/drive/ping", nil, "")
	require.NoError(t, f.admin.Ping(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestUploadOffloadDisabled(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	body, contentType := multipartUpload(t, "a.png", "png bytes", map[string]string{
		"private":     "true",
		"entity_type": "product",
		"entity_id":   "p42",
	})

	c, rec := f.request(http.MethodPost, "/v1/attachments", body, contentType)
	require.NoError(t, f.attachment.Upload(c))

	assert.Equal(t, http.StatusCreated, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "a.png", data["file_name"])
	assert.Equal(t, "/private/files/a.png", data["file_url"])
	assert.Equal(t, true, data["is_private"])
	assert.Equal(t, "product", data["attached_to_type"])
}

func TestUploadOffloadsWhenEnabled(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{Enabled: true, RefreshToken: "refresh-1"})

	body, contentType := multipartUpload(t, "a b.png", "png bytes", map[string]string{
		"private": "true",
	})

	c, rec := f.request(http.MethodPost, "/v1/attachments", body, contentType)
	require.NoError(t, f.attachment.Upload(c))

	assert.Equal(t, http.StatusCreated, rec.Code)

	// The after-insert hook runs before the response is written, so the
	// returned record already points at Drive.
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, entity.ServeLocator("drive-1", "a b.png"), data["file_url"])
	assert.Equal(t, "drive-1", data["drive_file_id"])
	assert.False(t, f.store.Exists("/private/files/a b.png", true))
}

func TestUploadMissingFile(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodPost, "/v1/attachments", strings.NewReader(""), echo.MIMEApplicationForm)
	require.NoError(t, f.attachment.Upload(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
}

func TestServeRequiresFileID(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{Enabled: true, RefreshToken: "refresh-1"})

	c, rec := f.request(http.MethodGet, "/v1/attachments/serve", nil, "")
	require.NoError(t, f.attachment.Serve(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeStreamsContent(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{Enabled: true, RefreshToken: "refresh-1"})
	f.drive.content = []byte("file content")

	c, rec := f.request(http.MethodGet, "/v1/attachments/serve?file_id=drive-1&file_name=a+b.png", nil, "")
	require.NoError(t, f.attachment.Serve(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "file content", rec.Body.String())
	assert.Equal(t, `attachment; filename="a b.png"`, rec.Header().Get("Content-Disposition"))
}

func TestServeQuotesFileName(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{Enabled: true, RefreshToken: "refresh-1"})
	f.drive.content = []byte("file content")

	c, rec := f.request(http.MethodGet, "/v1/attachments/serve?file_id=drive-1&file_name=a%22b.png", nil, "")
	require.NoError(t, f.attachment.Serve(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	// A quote in the name must not break the disposition parameter quoting.
	mediaType, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", mediaType)
	assert.Equal(t, `a"b.png`, params["filename"])
}

func TestGetUnknownRecord(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodGet, "/v1/attachments/unknown", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("unknown")
	require.NoError(t, f.attachment.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizeReturnsConsentURL(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodPost, "/v1/admin/drive/authorize", strings.NewReader("{}"), echo.MIMEApplicationJSON)
	require.NoError(t, f.admin.Authorize(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Contains(t, data["consent_url"], "state=drive-attachment-config")
}

func TestCallbackExchangesCode(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodGet, "/v1/admin/drive/callback?code=code-1", nil, "")
	require.NoError(t, f.admin.Callback(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, true, data["success"])
}

func TestCallbackRequiresCode(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	c, rec := f.request(http.MethodGet, "/v1/admin/drive/callback", nil, "")
	require.NoError(t, f.admin.Callback(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettings(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{
		Enabled:           true,
		RefreshToken:      "refresh-1",
		ParentFolderID:    "folder-1",
		SharingPermission: entity.SharingLinkView,
	})

	c, rec := f.request(http.MethodGet, "/v1/admin/drive/settings", nil, "")
	require.NoError(t, f.admin.Settings(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, true, data["enabled"])
	assert.Equal(t, true, data["has_authorization"])
	assert.Equal(t, "folder-1", data["parent_folder_id"])
	assert.Equal(t, "link_view", data["sharing_permission"])
	// Credentials never appear in the settings view.
	_, leaked := data["refresh_token"]
	assert.False(t, leaked)
}

func TestUpdateSettingsRejectsUnknownSharing(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})

	payload := `{"enabled": true, "sharing_permission": "everyone"}`
	c, rec := f.request(http.MethodPut, "/v1/admin/drive/settings", strings.NewReader(payload), echo.MIMEApplicationJSON)
	require.NoError(t, f.admin.UpdateSettings(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSettingsPreservesCredentials(t *testing.T) {
	repo := &stubConfigRepo{cfg: &entity.DriveConfig{
		RefreshToken:      "refresh-1",
		AuthorizationCode: "code-1",
	}}

	e := echo.New()
	e.Validator = api.NewValidator()

	configs := usecase.NewConfigUseCase(repo)
	admin := NewDriveAdminHandler(nil, nil, configs, &stubDrive{})

	payload := `{"enabled": true, "sharing_permission": "link_view", "folder_prefix": "Attachments"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/drive/settings", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, admin.UpdateSettings(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, repo.cfg.Enabled)
	assert.Equal(t, "Attachments", repo.cfg.FolderNamePrefix)
	assert.Equal(t, "refresh-1", repo.cfg.RefreshToken)
	assert.Equal(t, "code-1", repo.cfg.AuthorizationCode)
}

func TestMigrate(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{Enabled: true, RefreshToken: "refresh-1"})

	rec := &entity.FileRecord{ID: "f1", FileName: "a.png", FileURL: "/files/a.png"}
	f.files.records[rec.ID] = rec
	f.store.files[rec.FileURL] = []byte("bytes")

	c, resp := f.request(http.MethodPost, "/v1/admin/drive/migrate", nil, "")
	require.NoError(t, f.admin.Migrate(c))

	assert.Equal(t, http.StatusOK, resp.Code)
	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["migrated"])
	assert.Equal(t, float64(0), data["errors"])
	assert.Equal(t, float64(1), data["total"])
}

func TestConnectionFailureReportedInBody(t *testing.T) {
	f := newFixture(t, &entity.DriveConfig{})
	f.drive.connErr = errors.BadRequest("Drive upload is disabled in configuration", nil)

	c, rec := f.request(http.MethodGet, "/v1/admin/drive/test", nil, "")
	require.NoError(t, f.admin.TestConnection(c))

	// Connection problems come back as a payload, not an error status.
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, false, data["success"])
}
