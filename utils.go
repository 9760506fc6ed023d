package testgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ValidateRepeat validates a generator's repeat count
func ValidateRepeat(repeat int) error {
	if repeat < 1 || repeat > MaxRepeat {
		return ErrInvalidRepeat
	}
	return nil
}

// repeatWidth returns the decimal width of the largest 1-based repeat
// index, used to zero-pad repeat suffixes.
func repeatWidth(repeatTotal int) int {
	width := 1
	for repeatTotal >= 10 {
		repeatTotal /= 10
		width++
	}
	return width
}

// zeroPad renders a 1-based index zero-padded to the given width.
func zeroPad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// prepareOutputDir makes sure the output directory exists.
func prepareOutputDir(dir string) error {
	if dir == "" {
		return ErrOutputDir.WithDetails("output directory is empty")
	}
	if err := os.MkdirAll(dir, OutputDirPerm); err != nil {
		return ErrOutputDir.WithDetails(dir).WithCause(err)
	}
	return nil
}

// fileSHA256 returns the hex-encoded SHA-256 digest of the file contents.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
