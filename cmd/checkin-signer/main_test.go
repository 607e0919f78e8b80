package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_RejectsIncompleteFlags(t *testing.T) {
	const key = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	const holder = "0x00000000000000000000000000000000000000aa"

	tests := []struct {
		name string
		args []string
	}{
		{"no key", []string{"--event", "1", "--holder", holder}},
		{"no event", []string{"--key", key, "--holder", holder}},
		{"bad holder", []string{"--key", key, "--event", "1", "--holder", "bob"}},
		{"bad key", []string{"--key", "zz", "--event", "1", "--holder", holder}},
		{"unknown flag", []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHECKIN_SIGNER_KEY", "")
			assert.Error(t, run(tt.args))
		})
	}
}

func TestRun_Signs(t *testing.T) {
	t.Setenv("CHECKIN_SIGNER_KEY", "")
	err := run([]string{
		"--key", "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		"--event", "1",
		"--holder", "0x00000000000000000000000000000000000000aa",
		"--timestamp", "1772366400",
	})
	assert.NoError(t, err)
}
