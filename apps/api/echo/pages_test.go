package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/tests"
)

type pageTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	token        string
	wantCode     int
	wantLocation string
	wantBody     []string
}

func checkPage(t *testing.T, tt pageTest, env testEnv) {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newFormRequest(method, tt.path, tt.token, tt.form)
	env.app.ServeHTTP(rec, req)

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
	}
	body := rec.Body.String()
	for _, want := range tt.wantBody {
		if !strings.Contains(body, want) {
			t.Errorf("failed! body does not contain %q:\n%s", want, body)
		}
	}
}

func Test_adminPages_login(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.repo, "Admin", "admin", "admin@test.cd", strongPwd, []string{user.RoleAdmin}, true)
	testutil.CreateUser(t, env.repo, "Hero", "hero", "hero@test.cd", strongPwd, []string{user.RoleStudent}, true)

	tests := []pageTest{
		{name: "Auth required", path: "/admin", wantCode: http.StatusSeeOther, wantLocation: loginPath},
		{name: "Invalid cookie", path: "/admin/students", token: "nope", wantCode: http.StatusSeeOther, wantLocation: loginPath},
		{name: "Login form", path: loginPath, wantCode: http.StatusOK, wantBody: []string{"<h1", "Log in", `name="username"`}},
		{
			name: "Missing credentials", method: http.MethodPost, path: loginPath, form: url.Values{"username": {"admin"}},
			wantCode: http.StatusBadRequest, wantBody: []string{"Please enter your username and password."},
		},
		{
			name: "Wrong password", method: http.MethodPost, path: loginPath,
			form:     url.Values{"username": {"admin"}, "password": {"nope"}},
			wantCode: http.StatusBadRequest, wantBody: []string{"authentication failed", `value="admin"`},
		},
		{
			name: "Not an admin", method: http.MethodPost, path: loginPath,
			form:     url.Values{"username": {"hero"}, "password": {strongPwd}},
			wantCode: http.StatusForbidden, wantBody: []string{"permission denied"},
		},
		{
			name: "Logged in", method: http.MethodPost, path: loginPath,
			form:     url.Values{"username": {"admin"}, "password": {strongPwd}},
			wantCode: http.StatusSeeOther, wantLocation: adminPagesPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkPage(t, tt, env)
		})
	}
}

func Test_adminPages_logout(t *testing.T) {
	env := setup(t)
	staff := testutil.CreateUser(t, env.repo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	req, rec := newFormRequest(http.MethodPost, logoutPath, env.token(t, staff), url.Values{})
	env.app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, loginPath, rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0, "cookie cleared")
}

func Test_adminPages_list(t *testing.T) {
	env := setup(t)
	staff := testutil.CreateUser(t, env.repo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, env.repo, "Hero", "hero_k", "hero@test.cd", "", []string{user.RoleStudent}, true)
	amy := testutil.CreateUser(t, env.repo, "Amy", "amy_kab", "amy@test.cd", "", []string{user.RoleStudent}, true)
	token := env.token(t, staff)

	tests := []pageTest{
		{name: "Index", path: adminPagesPath, token: token, wantCode: http.StatusSeeOther, wantLocation: "/admin/staff"},
		{
			name: "Student token", path: "/admin/students", token: env.token(t, student),
			wantCode: http.StatusForbidden, wantBody: []string{"403 Forbidden", "permission denied"},
		},
		{
			name: "Unknown resource", path: "/admin/courses", token: token,
			wantCode: http.StatusNotFound, wantBody: []string{"404 Not Found"},
		},
		{
			name: "Sorted", path: "/admin/students?sort=name", token: token, wantCode: http.StatusOK,
			wantBody: []string{
				"<title>Students | Masomo Admin</title>",
				`aria-current="page">Students</a>`,
				`aria-sort="ascending"`,
				"amy_kab", "hero_k",
				`href="/admin/students?page_size=10&amp;sort=-name"`,
				"Showing 1 to 2 of 2",
			},
		},
		{
			name: "Filtered", path: "/admin/students?filter.name=amy", token: token, wantCode: http.StatusOK,
			wantBody: []string{"amy_kab", `name="filter.name" value="amy"`, `<input type="hidden" name="page_size" value="10">`},
		},
		{
			name: "Empty", path: "/admin/teachers", token: token, wantCode: http.StatusOK,
			wantBody: []string{"No Teachers found"},
		},
		{
			name: "Expanded", path: "/admin/students?expanded=" + amy.ID, token: token, wantCode: http.StatusOK,
			wantBody: []string{`aria-expanded="true"`, "Last login", "Never"},
		},
		{
			name: "Create modal", path: "/admin/students?modal=create", token: token, wantCode: http.StatusOK,
			wantBody: []string{
				`role="dialog"`, `aria-modal="true"`, `aria-labelledby="record-form-title"`,
				`id="record-form-title"`, "Add Student", `name="password_confirm"`,
			},
		},
		{
			name: "Edit modal", path: "/admin/students?modal=edit&id=" + amy.ID, token: token, wantCode: http.StatusOK,
			wantBody: []string{"Edit Student", `value="amy_kab"`, `type="checkbox" name="is_active" value="true" checked`},
		},
		{
			name: "Edit unknown", path: "/admin/students?modal=edit&id=nope", token: token,
			wantCode: http.StatusNotFound,
		},
		{
			name: "Delete confirmation", path: "/admin/students?modal=delete&selected=" + amy.ID + "&selected=" + student.ID, token: token,
			wantCode: http.StatusOK,
			wantBody: []string{"Delete 2 Students", `name="id" value="` + amy.ID + `"`, `action="/admin/students/delete?page_size=10"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkPage(t, tt, env)
		})
	}
}

func Test_adminPages_submit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	staff := testutil.CreateUser(t, env.repo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := env.token(t, staff)

	// create
	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/students?page_size=25", token: token,
		form:     url.Values{"name": {""}, "username": {"amy_kab"}, "password": {"short"}},
		wantCode: http.StatusBadRequest,
		wantBody: []string{`role="dialog"`, "this field is required", `value="amy_kab"`, `aria-invalid="true"`},
	}, env)

	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/students?page_size=25", token: token,
		form: url.Values{
			"name": {"Amy Kab"}, "username": {"amy_kab"}, "email": {"amy@test.cd"},
			"password": {strongPwd}, "password_confirm": {strongPwd},
		},
		wantCode: http.StatusSeeOther, wantLocation: "/admin/students?page_size=25",
	}, env)

	amy, err := env.repo.GetUser(ctx, user.GetFilter{Username: "amy_kab"})
	require.NoError(t, err)
	assert.True(t, amy.IsActive)

	// update: the hidden input is overridden by the checkbox only when it is checked
	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/students/" + amy.ID + "?sort=name", token: token,
		form:     url.Values{"name": {"Amy K."}, "username": {"amy_kab"}, "email": {"amy@test.cd"}, "is_active": {"false"}},
		wantCode: http.StatusSeeOther, wantLocation: "/admin/students?page_size=10&sort=name",
	}, env)

	amy, err = env.repo.GetUser(ctx, user.GetFilter{ID: amy.ID})
	require.NoError(t, err)
	assert.Equal(t, "Amy K.", amy.Name)
	assert.False(t, amy.IsActive)

	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/students/" + amy.ID, token: token,
		form:     url.Values{"name": {"Amy K."}, "password": {"N3w#Secret"}, "password_confirm": {"nope"}},
		wantCode: http.StatusBadRequest,
		wantBody: []string{"Edit Student", "passwords do not match"},
	}, env)

	// delete
	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/students/delete?page_size=10", token: token,
		form:     url.Values{"id": {amy.ID}},
		wantCode: http.StatusSeeOther, wantLocation: "/admin/students?page_size=10",
	}, env)

	_, err = env.repo.GetUser(ctx, user.GetFilter{ID: amy.ID})
	assert.Equal(t, user.ErrNotFound, err)

	checkPage(t, pageTest{
		method: http.MethodPost, path: "/admin/staff/delete", token: token,
		form:     url.Values{"id": {staff.ID}},
		wantCode: http.StatusForbidden, wantBody: []string{"you cannot delete your own account"},
	}, env)
}
