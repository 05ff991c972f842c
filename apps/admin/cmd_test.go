package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
	sqlxrepos "github.com/trezcool/masomo-admin/storage/database/sqlx"
	"github.com/trezcool/masomo-admin/tests"
)

const strongPwd = "Kp9#wLm2xQ"

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// start CLI
	return &commandLine{
		db:         db,
		usrSvc:     user.NewService(usrRepo),
		validate:   validate,
		translator: translator,
		out:        ioutil.Discard,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

// mockPasswords makes readPasswordFunc return pwds in turn.
func mockPasswords(pwds ...string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var migrated bool
	migrateFunc = func(ctx context.Context, db *sqlx.DB) error {
		migrated = db == cli.db
		return nil
	}

	tests := []cliTest{
		{name: "extra args", args: []string{"migrate", "up"}, wantErrStr: `unknown command "up" for "admin migrate"`},
		{name: "migrate", args: []string{"migrate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	if !migrated {
		t.Error("migrate did not run")
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateUser(t, usrRepo, "User", "awe_user", "awe@test.cd", "", nil, true)

	type extra struct {
		pwds []string
	}
	tests := []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
		{name: "name required", args: []string{"adduser"}, wantErrStr: `required flag(s) "name" not set`},
		{name: "empty password", args: []string{"adduser", "--name", "Boss"}, wantErr: errEmptyPassword},
		{
			name: "username or email required", args: []string{"adduser", "--name", "Boss"},
			extra: extra{pwds: []string{strongPwd, strongPwd}}, wantErrStr: "username: one of username or email is required",
		},
		{
			name: "passwords mismatch", args: []string{"adduser", "--name", "Boss", "--username", "the_boss"},
			extra: extra{pwds: []string{strongPwd, "nope"}}, wantErrStr: "password_confirm:",
		},
		{
			name: "invalid role", args: []string{"adduser", "--name", "Boss", "--username", "the_boss", "--role", "admin:janitor"},
			extra: extra{pwds: []string{strongPwd, strongPwd}}, wantErrStr: "roles:",
		},
		{
			name: "username taken", args: []string{"adduser", "--name", "Boss", "--username", "AWE_USER"},
			extra: extra{pwds: []string{strongPwd, strongPwd}}, wantErrStr: "username: a user with this username already exists",
		},
		{
			name: "created", args: []string{"adduser", "--name", "Boss", "--username", "the_boss", "--email", "boss@test.cd"},
			extra: extra{pwds: []string{strongPwd, strongPwd}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if extra, ok := tt.extra.(extra); ok {
				mockPasswords(extra.pwds...)
			} else {
				mockPasswords()
			}
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	boss, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "the_boss"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if !boss.IsActive || !boss.IsAdmin() {
		t.Errorf("boss = %+v; want an active admin", boss)
	}
	if err = boss.CheckPassword(strongPwd); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	var out bytes.Buffer
	cli.out = &out

	usr := testutil.CreateUser(t, usrRepo, "User", "awe_user", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErrStr: `required flag(s) "username" not set`},
		{name: "username but no password", args: []string{"resetpassword", "--username", "lol"}, wantErr: errEmptyPassword},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, extra: extra{pwd: strongPwd}, wantErr: user.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "--username", usr.Username}, extra: extra{pwd: "lol"}, wantErrStr: "at least 8 characters"},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, extra: extra{pwd: strongPwd}},
		{name: "reset with email", args: []string{"resetpassword", "--username", strings.ToUpper(usr.Email)}, extra: extra{pwd: "Zx8$pLq4nW"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if extra, ok := tt.extra.(extra); ok {
				mockPasswords(extra.pwd)
			} else {
				mockPasswords()
			}

			err := cli.run(append([]string{"admin"}, tt.args...))
			checkErr(t, tt, err)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				usr = refreshedUsr
			}
		})
	}
	if !strings.Contains(out.String(), "Password changed") {
		t.Errorf("output = %q; want it to confirm the change", out.String())
	}
}
