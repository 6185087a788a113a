// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at login and registration.
const MinPasswordLength = 6

// HashPassword hashes a plain-text password with bcrypt.
// The fake auth API stores only these hashes.
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) < MinPasswordLength {
		return "", fmt.Errorf("sec: password shorter than %d characters", MinPasswordLength)
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}
