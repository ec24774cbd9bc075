package main

import (
	"errors"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
	}{
		{"none", nil, options{}},
		{"version", []string{"-v"}, options{showVersion: true}},
		{"long version", []string{"--version"}, options{showVersion: true}},
		{"help", []string{"-h"}, options{showHelp: true}},
		{"alias", []string{"--alias", "abc123"}, options{alias: "abc123"}},
		{"alias equals", []string{"--alias=abc123"}, options{alias: "abc123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs(%v) error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("parseArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	for _, args := range [][]string{{"--alias"}, {"--nope"}} {
		if _, err := parseArgs(args); !errors.Is(err, errUsage) {
			t.Errorf("parseArgs(%v) error = %v, want errUsage", args, err)
		}
	}
}
