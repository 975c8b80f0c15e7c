package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var runIDRegex = regexp.MustCompile(`^run_[0-9]{10}_[0-9a-f]{8}$`)

// NewRunID generates a run identifier of the form run_<unix>_<hex>.
// The timestamp prefix keeps IDs roughly sortable by submission time.
func NewRunID() (string, error) {
	timestamp := time.Now().Unix()
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("run_%010d_%s", timestamp, hex.EncodeToString(randomBytes)), nil
}

func ValidateRunID(id string) bool {
	return runIDRegex.MatchString(id)
}

func RunIDTimestamp(id string) (time.Time, error) {
	if !ValidateRunID(id) {
		return time.Time{}, fmt.Errorf("invalid run ID format: %s", id)
	}
	tsStr := id[len("run_") : len("run_")+10]
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp from run ID %s: %w", id, err)
	}
	return time.Unix(ts, 0), nil
}
