package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/db/dbtest"
	"github.com/mind-engage/studyhub/internal/logger"
)

func setup(t *testing.T, stdin string) (*commandLine, *bytes.Buffer, *accounts.SQLStore) {
	t.Helper()
	store := accounts.NewSQLStore(dbtest.Open(t))
	out := &bytes.Buffer{}
	return &commandLine{
		in:       bufio.NewReader(strings.NewReader(stdin)),
		out:      out,
		log:      logger.Nop(),
		dataRoot: t.TempDir(),
		accounts: func() (accountStore, error) { return store, nil },
	}, out, store
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("run() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("run() error = %v, want %q", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out, _ := setup(t, "")
	runCLITests(t, cli, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "mockgen without subject", args: []string{"mockgen", "-standard", "10th"}, wantErr: errHelp},
		{name: "mockgen bad marks", args: []string{"mockgen", "-standard", "10th", "-subject", "civics", "-marks", "4"}, wantErrStr: "invalid -marks"},
	})
	if !strings.Contains(out.String(), "setrole") {
		t.Errorf("usage not printed: %q", out.String())
	}
}

func Test_commandLine_setrole(t *testing.T) {
	cli, out, store := setup(t, "")
	a, err := store.Signup(context.Background(), "asha", "pw", "")
	if err != nil {
		t.Fatal(err)
	}
	runCLITests(t, cli, []cliTest{
		{name: "by uid", args: []string{"setrole", "-uid", a.ID, "-role", "teacher"}},
		{name: "by username", args: []string{"setrole", "-username", "asha", "-role", "ADMIN"}},
		{name: "bad role", args: []string{"setrole", "-uid", a.ID, "-role", "principal"}, wantErr: accounts.ErrInvalidRole},
		{name: "unknown uid", args: []string{"setrole", "-uid", "ghost", "-role", "teacher"}, wantErr: accounts.ErrNotFound},
	})
	if role, _ := store.RoleOf(context.Background(), a.ID); role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}
	if !strings.Contains(out.String(), "Role 'teacher' set for user: "+a.ID) {
		t.Errorf("output = %q", out.String())
	}
}

func Test_commandLine_setrolePrompts(t *testing.T) {
	cli, out, store := setup(t, "")
	a, _ := store.Signup(context.Background(), "ravi", "pw", "")
	cli.in = bufio.NewReader(strings.NewReader(a.ID + "\nteacher\n"))

	if err := cli.run([]string{"admin", "setrole"}); err != nil {
		t.Fatal(err)
	}
	if role, _ := store.RoleOf(context.Background(), a.ID); role != "teacher" {
		t.Errorf("role = %q", role)
	}
	if !strings.Contains(out.String(), "Enter UID: ") || !strings.Contains(out.String(), "Enter role") {
		t.Errorf("prompts missing: %q", out.String())
	}
}

func Test_commandLine_hashpw(t *testing.T) {
	cli, out, _ := setup(t, "")
	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()
	readPasswordFunc = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	if err := cli.run([]string{"admin", "hashpw"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := lines[len(lines)-1]
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")) != nil {
		t.Errorf("printed hash %q does not match", hash)
	}

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	if err := cli.run([]string{"admin", "hashpw"}); !errors.Is(err, errHelp) {
		t.Errorf("empty password err = %v", err)
	}
}

func writeFile(t *testing.T, p, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func Test_commandLine_manifestAndMockgen(t *testing.T) {
	cli, out, _ := setup(t, "")
	dir := filepath.Join(cli.dataRoot, "10th", "civics")
	writeFile(t, filepath.Join(dir, "b.json"), `[{"question":"b1","marks":3,"difficulty":"Easy"}]`)
	writeFile(t, filepath.Join(dir, "a.json"), `[{"question":"a1","marks":2,"difficulty":"Easy"},{"question":"a2","marks":2,"difficulty":"Hard"}]`)

	if err := cli.run([]string{"admin", "manifest"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var m struct{ Chapters []string }
	json.Unmarshal(b, &m)
	if len(m.Chapters) != 2 || m.Chapters[0] != "a.json" {
		t.Fatalf("manifest = %s", b)
	}

	out.Reset()
	// 5-mark bucket is empty; the ladder falls back to 2 marks
	err = cli.run([]string{"admin", "mockgen", "-standard", "10th", "-subject", "civics", "-total", "2", "-marks", "5", "-seed", "7"})
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		Meta     struct{ MarksChoice string `json:"marks_choice"` } `json:"meta"`
		Sections map[string][]json.RawMessage                     `json:"sections"`
	}
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, out.String())
	}
	if p.Meta.MarksChoice != "2" || len(p.Sections["2"]) != 2 {
		t.Fatalf("paper = %s", out.String())
	}
}
