package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	incidentschema "strikewatch/schema"
)

// runValidate schema-checks incident JSON files. A .jsonl file is validated
// line by line; anything else is treated as a single JSON document.
func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: strikewatch validate <file.json|file.jsonl> ...")
		return 2
	}

	valid, invalid := 0, 0
	for _, path := range fs.Args() {
		v, i, err := validateFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			invalid++
			continue
		}
		valid += v
		invalid += i
	}

	fmt.Printf("validate valid=%d invalid=%d\n", valid, invalid)
	if invalid > 0 {
		return 1
	}
	return 0
}

func validateFile(path string) (valid, invalid int, err error) {
	if strings.HasSuffix(path, ".jsonl") {
		file, err := os.Open(path)
		if err != nil {
			return 0, 0, err
		}
		defer file.Close()

		lineNo := 0
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, err := incidentschema.ValidateIncidentPayload(json.RawMessage(line)); err != nil {
				fmt.Fprintf(os.Stderr, "%s:%d: %v\n", path, lineNo, err)
				invalid++
				continue
			}
			valid++
		}
		return valid, invalid, scanner.Err()
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	if _, err := incidentschema.ValidateIncidentPayload(payload); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 0, 1, nil
	}
	return 1, 0, nil
}
