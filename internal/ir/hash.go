package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord  = "labelgen/record/v1"
	DomainProfile = "labelgen/profile/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordID computes the content-addressed id of a (video, label) pair.
// The id is stable across runs given the same inputs, so identical
// records produced by two runs can be correlated in the store.
func RecordID(video string, label []int) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"video": video,
		"label": label,
	})
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// ProfileHash computes the hash of a dataset profile in canonical map form.
func ProfileHash(profile map[string]any) (string, error) {
	canonical, err := MarshalCanonical(profile)
	if err != nil {
		return "", fmt.Errorf("ProfileHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProfile, canonical), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRecordID(video string, label []int) string {
	id, err := RecordID(video, label)
	if err != nil {
		panic(err)
	}
	return id
}
