package common

import (
	"encoding/json"
	"fmt"
	"os"
)

// CIResult is the machine-readable outcome emitted by tool commands in CI mode.
type CIResult struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// PrintCIResult writes a single JSON result document to stdout.
func PrintCIResult(ok bool, title string, details []string, err error) {
	result := CIResult{OK: ok, Title: title, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	encoded, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		fmt.Fprintf(os.Stderr, "encode ci result: %v\n", marshalErr)
		return
	}
	fmt.Fprintln(os.Stdout, string(encoded))
}
