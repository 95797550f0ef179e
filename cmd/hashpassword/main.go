// Command hashpassword produces a value for ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/worksphere/admin-auth/internal/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	var (
		cost          int
		useArgon2id   bool
		passwordStdin bool
	)

	flagSet := pflag.NewFlagSet("hashpassword", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt work factor")
	flagSet.BoolVar(&useArgon2id, "argon2id", false, "emit an argon2id PHC string instead of bcrypt")
	flagSet.BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	password, err := readPassword(stdin, stderr, passwordStdin)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	var hashed string
	if useArgon2id {
		hashed, err = auth.HashPasswordArgon2id(password, nil)
	} else {
		hashed, err = auth.HashPassword(password, cost)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, hashed)
	return err
}

func readPassword(stdin *os.File, stderr io.Writer, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt (use --password-stdin)")
	}
	fmt.Fprint(stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passwordBytes), nil
}
