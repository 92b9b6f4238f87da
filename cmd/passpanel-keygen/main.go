// Command passpanel-keygen prints a fresh PASSPANEL_SECRET_KEY and can append
// it to an env file.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/ericfisherdev/passpanel/internal/adapter/driven/cipher"
)

const keyVar = "PASSPANEL_SECRET_KEY"

// errKeyPresent stops keygen from replacing a key that may already protect
// stored passwords.
var errKeyPresent = errors.New(keyVar + " is already set")

func main() {
	envFile := flag.String("env", "", "append the key to this env file instead of only printing it")
	flag.Parse()

	if err := run(os.Stdout, *envFile); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, envFile string) error {
	key, err := cipher.GenerateKey()
	if err != nil {
		return err
	}
	encoded := hex.EncodeToString(key)

	if envFile == "" {
		fmt.Fprintln(out, encoded)
		return nil
	}

	if err := appendKey(envFile, encoded); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	green.Fprint(out, "✓ ")
	fmt.Fprintf(out, "%s written to %s\n", keyVar, envFile)
	yellow.Fprint(out, "! ")
	fmt.Fprintln(out, "Back this file up; passwords stored under this key cannot be read without it.")
	return nil
}

func appendKey(path, encoded string) error {
	existing, err := godotenv.Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read env file %s: %w", path, err)
	case existing[keyVar] != "":
		return fmt.Errorf("%s: %w", path, errKeyPresent)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open env file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "\n%s=%s\n", keyVar, encoded); err != nil {
		_ = f.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	return f.Close()
}
