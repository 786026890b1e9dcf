package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/mind-engage/studyhub/internal/accounts"
	"github.com/mind-engage/studyhub/internal/logger"
	"github.com/mind-engage/studyhub/internal/paper"
	"github.com/mind-engage/studyhub/internal/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type accountStore interface {
	GetByUsername(ctx context.Context, username string) (accounts.Account, error)
	SetRole(ctx context.Context, id, role string) error
}

type commandLine struct {
	in       *bufio.Reader
	out      io.Writer
	log      *logger.Logger
	dataRoot string
	// accounts opens the account store on first use; only setrole needs it.
	accounts func() (accountStore, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  setrole [-uid UID | -username NAME] [-role ROLE] - set an account's role (prompts for missing values)")
	fmt.Fprintln(cli.out, "  hashpw - read a password and print its bcrypt hash for ADMIN_PASS_HASH")
	fmt.Fprintln(cli.out, "  manifest [-root DIR] - write manifest.json for every <standard>/<subject> in the question bank")
	fmt.Fprintln(cli.out, "  mockgen -standard STD -subject SUBJ [-total N] [-marks 2|3|5|all] [-difficulty D] [-seed N] - print a mock paper")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setRoleCmd := flag.NewFlagSet("setrole", flag.ContinueOnError)
	setRoleUID := setRoleCmd.String("uid", "", "account id")
	setRoleUser := setRoleCmd.String("username", "", "account username, instead of -uid")
	setRoleRole := setRoleCmd.String("role", "", "student, teacher or admin")

	manifestCmd := flag.NewFlagSet("manifest", flag.ContinueOnError)
	manifestRoot := manifestCmd.String("root", cli.dataRoot, "question bank root")

	mockCmd := flag.NewFlagSet("mockgen", flag.ContinueOnError)
	mockRoot := mockCmd.String("root", cli.dataRoot, "question bank root")
	mockStd := mockCmd.String("standard", "", "standard, e.g. 10th")
	mockSubj := mockCmd.String("subject", "", "subject, e.g. civics")
	mockTotal := mockCmd.String("total", "20", "number of questions")
	mockMarks := mockCmd.String("marks", "all", "2, 3, 5 or all")
	mockDiff := mockCmd.String("difficulty", "", "difficulty filter")
	mockSeed := mockCmd.Uint64("seed", 0, "deterministic seed; 0 uses crypto randomness")

	for _, fs := range []*flag.FlagSet{setRoleCmd, manifestCmd, mockCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.setRole(*setRoleUID, *setRoleUser, *setRoleRole)
	case "hashpw":
		return cli.hashPassword()
	case "manifest":
		if err := manifestCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.writeManifests(*manifestRoot)
	case "mockgen":
		if err := mockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mockStd == "" || *mockSubj == "" {
			mockCmd.Usage()
			return errHelp
		}
		mode, ok := paper.ParseMode(*mockMarks)
		if !ok {
			return fmt.Errorf("invalid -marks %q: want 2, 3, 5 or all", *mockMarks)
		}
		return cli.mockgen(*mockRoot, *mockSeed, paper.Request{
			Standard:   *mockStd,
			Subject:    *mockSubj,
			Total:      paper.ParseTotal(*mockTotal),
			Marks:      mode,
			Difficulty: *mockDiff,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) prompt(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	line, err := cli.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cli *commandLine) setRole(uid, username, role string) error {
	var err error
	if uid == "" && username == "" {
		if uid, err = cli.prompt("Enter UID: "); err != nil {
			return err
		}
	}
	if role == "" {
		if role, err = cli.prompt("Enter role (student/teacher/admin): "); err != nil {
			return err
		}
	}
	role = strings.ToLower(role)
	if !accounts.ValidRole(role) {
		return accounts.ErrInvalidRole
	}

	store, err := cli.accounts()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if uid == "" {
		a, err := store.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		uid = a.ID
	}
	if err := store.SetRole(ctx, uid, role); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Role '%s' set for user: %s\n", role, uid)
	return nil
}

func (cli *commandLine) hashPassword() error {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		return errHelp
	}
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}

func (cli *commandLine) writeManifests(root string) error {
	res, err := paper.WriteManifests(root)
	if err != nil {
		return err
	}
	for _, r := range res {
		fmt.Fprintf(cli.out, "wrote %s (%d chapters)\n", r.Dir, r.Chapters)
	}
	fmt.Fprintf(cli.out, "%d manifests\n", len(res))
	return nil
}

func (cli *commandLine) mockgen(root string, seed uint64, req paper.Request) error {
	bank, err := storage.NewFSStore(root)
	if err != nil {
		return err
	}
	src := paper.DefaultSource()
	if seed != 0 {
		src = paper.NewSeededSource(seed)
	}
	gen := paper.Ladder{Gen: paper.NewAssembler(paper.NewLoader(bank, cli.log), src)}
	p, err := gen.Assemble(context.Background(), req)
	if err != nil && !errors.Is(err, paper.ErrNoQuestions) {
		return err
	}
	if err != nil {
		cli.log.Warn("no questions matched", "standard", req.Standard, "subject", req.Subject)
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
