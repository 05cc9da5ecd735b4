package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUppercasesReferencePrefix(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUBMISSION_REFERENCE_PREFIX", " sub ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SUB", cfg.Submission.ReferencePrefix)
}

func TestLoadRejectsInvalidReferencePrefix(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, prefix := range []string{"AP-P", "APP1", "A P", "ÄPP"} {
		t.Run(prefix, func(t *testing.T) {
			t.Setenv("SUBMISSION_REFERENCE_PREFIX", prefix)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SUBMISSION_REFERENCE_PREFIX")
		})
	}
}
