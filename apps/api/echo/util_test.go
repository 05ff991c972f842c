package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/admin"
	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	sqlxrepos "github.com/trezcool/masomo-admin/storage/database/sqlx"
	"github.com/trezcool/masomo-admin/tests"
)

const strongPwd = "Kp9#wLm2xQ"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app  Server
	conf *core.Config
	auth *auth
	repo user.Repository
}

func setup(t *testing.T) testEnv {
	conf := core.NewTestConfig()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)
	svc := user.NewService(repo)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	registry := admin.NewRegistry()
	registry.MustRegister(
		admin.NewStudents(svc, validate, translator),
		admin.NewTeachers(svc, validate, translator),
		admin.NewStaff(svc, validate, translator),
	)

	app, err := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf),
		UserSvc:        svc,
		Registry:       registry,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return testEnv{
		app:  app,
		conf: conf,
		auth: &auth{conf: conf, svc: svc},
		repo: repo,
	}
}

func (env testEnv) token(t *testing.T, usr user.User) string {
	token, err := env.auth.generateToken(env.auth.userClaims(usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newFormRequest posts form values, authenticated with the token cookie when token is set.
func newFormRequest(method, path, token string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// responseIDs returns the "id" of every object of a JSON list.
func responseIDs(t *testing.T, data []byte) []string {
	var objs []map[string]interface{}
	if err := json.Unmarshal(data, &objs); err != nil {
		t.Fatalf("responseIDs() failed: %v; data %s", err, data)
	}
	ids := make([]string, 0, len(objs))
	for _, obj := range objs {
		id, _ := obj["id"].(string)
		ids = append(ids, id)
	}
	return ids
}
