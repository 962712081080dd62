package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/darasa-tz/darasa/core"
	"github.com/darasa-tz/darasa/core/user"
	dummydb "github.com/darasa-tz/darasa/storage/database/dummy"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	return &commandLine{usrRepo: usrRepo}
}

func seedUser(t *testing.T, name, email string, roles []string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Phone:     "+255712345678",
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword("0ldPwd!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := seedUser(t, "Neema Joseph", "neema@test.tz", []string{user.RoleStudent})

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "neema@test.tz"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.tz"}, pwd: "lol123", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, pwd: "n3wPwd!"},
		{name: "email is case-insensitive", args: []string{"resetpassword", "-email", "NEEMA@test.tz"}, pwd: "n3werPwd!"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_createSuperuser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte("Sup3rPwd!"), nil
	}

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "createsuperuser", "-name", "Boss"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})

	t.Run("creates an active admin", func(t *testing.T) {
		args := []string{"admin", "createsuperuser", "-name", "Boss", "-email", "Boss@test.tz", "-phone", "+255712345600"}
		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		usr, err := usrRepo.GetUserByEmail(context.Background(), "boss@test.tz")
		if err != nil {
			t.Fatalf("GetUserByEmail() failed, %v", err)
		}
		if !usr.IsAdmin() {
			t.Errorf("roles = %v; want admin", usr.Roles)
		}
		if !usr.Active() {
			t.Error("superuser should be active")
		}
		if err := usr.CheckPassword("Sup3rPwd!"); err != nil {
			t.Errorf("CheckPassword() failed, %v", err)
		}
	})

	t.Run("promotes an existing user", func(t *testing.T) {
		usr := seedUser(t, "Hero", "hero@test.tz", []string{user.RoleStudent})

		args := []string{"admin", "createsuperuser", "-name", usr.Name, "-email", usr.Email, "-phone", usr.Phone}
		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		promoted, err := usrRepo.GetUserByID(context.Background(), usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed, %v", err)
		}
		if !promoted.IsAdmin() {
			t.Errorf("roles = %v; want admin", promoted.Roles)
		}
		if bytes.Equal(promoted.PasswordHash, usr.PasswordHash) {
			t.Error("failed to update new password")
		}
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var calls int
	migrateRunFunc = func(db *sql.DB, conf *core.Config) error {
		calls++
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if calls != 1 {
		t.Errorf("migrate ran %d times; want 1", calls)
	}
}
