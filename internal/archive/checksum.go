package archive

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChecksumExt is the sidecar file extension.
const ChecksumExt = ".sha256"

// Digest computes the SHA-256 of the file's exact bytes as a lowercase hex
// string.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// WriteChecksum computes the archive's digest and writes the sidecar file
// in the standard "<hex-digest>  <filename>\n" format. It must run after
// all staging and archiving is complete: any later mutation of the archive
// invalidates the sidecar.
func WriteChecksum(archivePath string) (sidecarPath, digest string, err error) {
	digest, err = Digest(archivePath)
	if err != nil {
		return "", "", err
	}

	sidecarPath = archivePath + ChecksumExt
	line := fmt.Sprintf("%s  %s\n", digest, filepath.Base(archivePath))
	if err := os.WriteFile(sidecarPath, []byte(line), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write checksum %s: %w", sidecarPath, err)
	}
	return sidecarPath, digest, nil
}

// VerifyChecksum recomputes the archive digest and compares it to the
// sidecar's recorded value. Returns the digest on success.
func VerifyChecksum(archivePath string) (string, error) {
	sidecarPath := archivePath + ChecksumExt
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum sidecar %s: %w", sidecarPath, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) < 1 || len(fields[0]) != sha256.Size*2 {
		return "", fmt.Errorf("malformed checksum sidecar %s", sidecarPath)
	}
	recorded := fields[0]

	actual, err := Digest(archivePath)
	if err != nil {
		return "", err
	}
	if actual != recorded {
		return "", fmt.Errorf("checksum mismatch for %s: sidecar records %s, archive hashes to %s",
			filepath.Base(archivePath), recorded, actual)
	}
	return actual, nil
}
