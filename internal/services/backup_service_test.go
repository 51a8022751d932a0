package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLegacySignature(t *testing.T) {
	// Known-answer vector: base64(HMAC-SHA1(secret, stringToSign)).
	secret := "uV3F3YluFJax1cknvbcGwgjvx4QpvB+leU8dUj2o"
	stringToSign := "PUT\n\napplication/json\nTue, 27 Mar 2007 19:36:42 +0000\n/backups/dump.json"

	assert.Equal(t, "4YuiJkUV86UenL+UgWNS5oCUp9A=", legacySignature(secret, stringToSign))
}

func TestBackupConfigConfigured(t *testing.T) {
	full := BackupConfig{Endpoint: "https://storage.example.com", Bucket: "backups", AccessKey: "key", SecretKey: "secret"}
	assert.True(t, full.Configured())

	assert.False(t, BackupConfig{}.Configured())

	partial := full
	partial.SecretKey = ""
	assert.False(t, partial.Configured())
}

func TestBackupRunUnconfigured(t *testing.T) {
	service := NewBackupService(nil, BackupConfig{})

	_, err := service.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrBackupNotConfigured)
}
