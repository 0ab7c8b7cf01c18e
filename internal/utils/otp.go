package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// OTPCost is the bcrypt work factor for confirmation codes.
const OTPCost = 10

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// GenerateOTP draws a 6-digit confirmation code uniformly from the full
// space, leading zeros included.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

// HashOTP hashes a confirmation code with a per-value random salt. The
// plaintext code must never be stored or logged after this point.
func HashOTP(otp string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), OTPCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyOTP checks a candidate code against the stored hash.
func VerifyOTP(candidate, hashedOTP string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedOTP), []byte(candidate)) == nil
}
