package log

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesPlainTextLineFormat(t *testing.T) {
	dir := t.TempDir()
	cpPath := filepath.Join(dir, "checkpoint.json")

	logger, err := NewLogger(cpPath)
	require.NoError(t, err)

	logger.Info("starting job", "job-1")
	logger.Error("item failed", "item-0", "boom")
	logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "job.log"))
	require.NoError(t, err)
	content := string(data)

	timestampPattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] starting job job-1$`)
	lineOne := firstLine(content)
	assert.Regexp(t, timestampPattern, lineOne)

	assert.Contains(t, content, "[ERROR] item failed item-0 boom")
}

func TestNewLoggerCreatesDirectoryIfMissing(t *testing.T) {
	dir := t.TempDir()
	cpPath := filepath.Join(dir, "nested", "deep", "checkpoint.json")

	logger, err := NewLogger(cpPath)
	require.NoError(t, err)
	logger.Info("hello")
	logger.Sync()

	_, err = os.Stat(filepath.Join(dir, "nested", "deep", "job.log"))
	require.NoError(t, err)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
