package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)

	// Leading zeros must survive formatting, so check a batch of draws
	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, re, otp)
	}
}

func TestHashAndVerifyOTP(t *testing.T) {
	otp := "042937"

	hash, err := HashOTP(otp)
	require.NoError(t, err)
	assert.NotEqual(t, otp, hash)

	assert.True(t, VerifyOTP(otp, hash))
	assert.False(t, VerifyOTP("042938", hash))
	assert.False(t, VerifyOTP("", hash))
}

func TestHashOTPSaltsPerValue(t *testing.T) {
	a, err := HashOTP("123456")
	require.NoError(t, err)
	b, err := HashOTP("123456")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyOTP("123456", a))
	assert.True(t, VerifyOTP("123456", b))
}
