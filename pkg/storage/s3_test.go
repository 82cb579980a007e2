package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_objectKey(t *testing.T) {
	require.Equal(t, "report.csv", objectKey(&UploadObject{FileName: "report.csv"}))
	require.Equal(t, "ledger/2024-01-01.csv", objectKey(&UploadObject{Prefix: "ledger", FileName: "2024-01-01.csv"}))
}
