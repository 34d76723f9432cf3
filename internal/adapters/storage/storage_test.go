package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	got := ObjectKey("reports/2024-01-10", "pipeline-report-2024-01-10.csv", "0123456789abcdef")
	assert.Equal(t, "reports/2024-01-10/pipeline-report-2024-01-10_01234567.csv", got)
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("text/csv; charset=utf-8"))
	assert.NoError(t, ValidateContentType("TEXT/CSV"))
	assert.Error(t, ValidateContentType("application/pdf"))
}

func TestValidateFileSize(t *testing.T) {
	assert.Error(t, ValidateFileSize(0, 10))
	assert.NoError(t, ValidateFileSize(10, 10))
	assert.Error(t, ValidateFileSize(11, 10))
	assert.NoError(t, ValidateFileSize(11, 0))
}
