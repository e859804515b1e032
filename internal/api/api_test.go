package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankjademk11/qwen-odg/internal/db"
	"github.com/bankjademk11/qwen-odg/internal/model"
)

const testJWTSecret = "test-secret"

var userColumns = []string{"code", "name_1", "password", "ic_wht", "ic_shelf"}

type testEnv struct {
	server *httptest.Server
	mock   sqlmock.Sqlmock
}

func setupTestServer(t *testing.T, opts Options) *testEnv {
	t.Helper()
	return setup(t, opts, false)
}

func setup(t *testing.T, opts Options, monitorPings bool) *testEnv {
	t.Helper()
	erp, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)

	opts.ERP = erp
	opts.Local = db.NewTestLocalDB(t)
	opts.JWTSecret = testJWTSecret
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}

	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(func() {
		server.Close()
		assert.NoError(t, mock.ExpectationsWereMet())
		erp.Close()
	})
	return &testEnv{server: server, mock: mock}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) expectUser(code, password string) {
	e.mock.ExpectQuery(`FROM erp_user WHERE code = \$1`).WithArgs(code).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(code, "Somchai", password, "1301", "130101"))
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	e.expectUser("u1", "1234")
	resp := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"code": "u1", "password": "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[loginResponse](t, resp)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealth(t *testing.T) {
	env := setup(t, Options{}, true)
	env.mock.ExpectPing()

	resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "healthy", "database": "connected"}, decode[map[string]string](t, resp))
}

func TestHealthDatabaseDown(t *testing.T) {
	env := setup(t, Options{}, true)
	env.mock.ExpectPing().WillReturnError(io.ErrUnexpectedEOF)

	resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "disconnected", decode[map[string]string](t, resp)["database"])
}

func TestLogin(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.expectUser("u1", "1234")

	resp := env.do(t, http.MethodPost, "/api/login", "", map[string]string{"code": "u1", "password": "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["code"])
	assert.Equal(t, "1301", user["ic_wht"])
	assert.NotContains(t, user, "password")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.expectUser("u1", "1234")
	env.mock.ExpectQuery(`FROM erp_user`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userColumns))

	for _, creds := range []map[string]string{
		{"code": "u1", "password": "wrong"},
		{"code": "ghost", "password": "1234"},
	} {
		resp := env.do(t, http.MethodPost, "/api/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid credentials", body["message"])
		assert.NotContains(t, body, "user")
	}
}

func TestLoginMissingFields(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodPost, "/api/login", "", map[string]string{"code": "u1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginDatabaseFailure(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectQuery(`FROM erp_user`).WillReturnError(io.ErrUnexpectedEOF)

	resp := env.do(t, http.MethodPost, "/api/login", "", map[string]string{"code": "u1", "password": "x"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, decode[map[string]any](t, resp)["success"])
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t, Options{})
	token := env.login(t)

	resp := env.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTransferSameEnds(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodPost, "/api/transfers", "", model.NewTransfer{
		TransferNo:   "FR-1",
		Creator:      "u1",
		WhFrom:       "1301",
		LocationFrom: "130101",
		WhTo:         "1301",
		LocationTo:   "130101",
		Details:      []model.TransferDetail{{ItemCode: "A001"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[errorResponse](t, resp)
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), body.RequestID)
}

func TestCreateTransferDuplicate(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT EXISTS`).WithArgs("FR-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	env.mock.ExpectRollback()

	resp := env.do(t, http.MethodPost, "/api/transfers", "", map[string]any{
		"transfer_no":   "FR-1",
		"creator":       "u1",
		"wh_from":       "1301",
		"location_from": "130101",
		"wh_to":         "1302",
		"location_to":   "130201",
		"details":       []map[string]any{{"item_code": "A001", "quantity": 5}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateTransferRequiresToken(t *testing.T) {
	env := setupTestServer(t, Options{RequireAuth: true})

	resp := env.do(t, http.MethodPost, "/api/transfers", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTransferCreatorFromToken(t *testing.T) {
	env := setupTestServer(t, Options{RequireAuth: true})
	token := env.login(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT EXISTS`).WithArgs("FR-2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectExec(`INSERT INTO ic_trans \(`).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`INSERT INTO ic_trans_detail \(`).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()
	env.mock.ExpectQuery(`FROM ic_trans t WHERE t.doc_no = \$1`).WithArgs("FR-2", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows([]string{"doc_no", "doc_date_time", "creator", "quantity"}).
			AddRow("FR-2", "2026-10-19 10:00:00", "u1", "5"))

	resp := env.do(t, http.MethodPost, "/api/transfers", token, map[string]any{
		"transfer_no":   "FR-2",
		"wh_from":       "1301",
		"location_from": "130101",
		"wh_to":         "1302",
		"location_to":   "130201",
		"details":       []map[string]any{{"item_code": "A001", "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "FR-2", body["transfer_no"])
	assert.Equal(t, "u1", body["creator"])
	assert.Equal(t, float64(5), body["quantity"])
}

func TestGetTransferNotFound(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectQuery(`FROM ic_trans t`).WithArgs("nope", model.TransFlagTransfer).
		WillReturnRows(sqlmock.NewRows([]string{"doc_no"}))

	resp := env.do(t, http.MethodGet, "/api/transfers/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTransferNotFound(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`UPDATE ic_trans SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectRollback()

	resp := env.do(t, http.MethodPut, "/api/transfers/nope", "", model.TransferRoute{
		WhFrom: "1301", LocationFrom: "130101", WhTo: "1302", LocationTo: "130201",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTransfersBadDate(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodGet, "/api/transfers?date=19-10-2026", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalysisWithoutSales(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectQuery(`SELECT EXISTS`).WithArgs("2026-10-19", model.TransFlagSale).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	resp := env.do(t, http.MethodGet, "/api/analysis-data?doc_date=2026-10-19&limit=9999&offset=-3", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestCheckPriceEmptySearch(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodGet, "/api/check-price-product?search=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWarehouses(t *testing.T) {
	env := setupTestServer(t, Options{})
	env.mock.ExpectQuery(`FROM ic_warehouse`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).AddRow("1301", "Main").AddRow("1302", "Branch"))

	resp := env.do(t, http.MethodGet, "/api/destination-warehouses", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.CodeName](t, resp), 2)
}

func TestRequestIDPropagated(t *testing.T) {
	env := setupTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/transfers?date=bad", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "abc-123", decode[errorResponse](t, resp).RequestID)
}

func multipartUpload(t *testing.T, itemCode string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("item_code", itemCode))
	fw, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := setupTestServer(t, Options{})

	body, ct := multipartUpload(t, "A001", []byte("definitely not an image"))
	resp, err := http.Post(env.server.URL+"/api/products/images/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadTooLarge(t *testing.T) {
	env := setupTestServer(t, Options{MaxUploadBytes: 1024})

	body, ct := multipartUpload(t, "A001", bytes.Repeat([]byte{0x89}, 4096))
	resp, err := http.Post(env.server.URL+"/api/products/images/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestUploadLargePNG(t *testing.T) {
	env := setupTestServer(t, Options{MediaBaseURL: "http://pos.local/"})

	img := image.NewRGBA(image.Rect(0, 0, 2048, 2048))
	for x := 0; x < 2048; x++ {
		img.Set(x, x, color.RGBA{255, 0, 0, 255})
	}
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT COALESCE\(url_image, ''\) FROM product_image`).WithArgs("A001", 1).
		WillReturnRows(sqlmock.NewRows([]string{"url_image"}))
	env.mock.ExpectExec(`UPDATE product_image SET url_image`).WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectExec(`INSERT INTO product_image \(`).WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectQuery(`INSERT INTO product_image_history`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "change_timestamp"}).AddRow(1, time.Now()))
	env.mock.ExpectCommit()

	body, ct := multipartUpload(t, "A001", pngData.Bytes())
	resp, err := http.Post(env.server.URL+"/api/products/images/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decode[imageChangeResponse](t, resp)
	assert.True(t, result.Success)
	assert.Regexp(t, regexp.MustCompile(`^http://pos\.local/media/[0-9a-f-]+\.jpg$`), result.URL)

	key := result.URL[strings.LastIndex(result.URL, "/")+1:]
	media := env.do(t, http.MethodGet, "/media/"+key, "", nil)
	require.Equal(t, http.StatusOK, media.StatusCode)
	assert.Equal(t, "image/jpeg", media.Header.Get("Content-Type"))

	stored, _, err := image.Decode(media.Body)
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.Bounds().Dx(), 1024)
	assert.LessOrEqual(t, stored.Bounds().Dy(), 1024)
}

func TestUploadRemovesMediaWhenERPFails(t *testing.T) {
	env := setupTestServer(t, Options{})

	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, image.NewRGBA(image.Rect(0, 0, 10, 10))))

	env.mock.ExpectBegin().WillReturnError(io.ErrUnexpectedEOF)

	body, ct := multipartUpload(t, "A001", pngData.Bytes())
	resp, err := http.Post(env.server.URL+"/api/products/images/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMediaNotFound(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodGet, "/media/missing.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImageHistoryBadDate(t *testing.T) {
	env := setupTestServer(t, Options{})

	resp := env.do(t, http.MethodGet, "/api/products/image-history?start_date=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t, Options{AllowedOrigins: []string{"http://pos.local"}})

	req, _ := http.NewRequest(http.MethodOptions, env.server.URL+"/api/transfers", nil)
	req.Header.Set("Origin", "http://pos.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://pos.local", resp.Header.Get("Access-Control-Allow-Origin"))
}
