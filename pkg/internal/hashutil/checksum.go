package hashutil

import (
	"crypto/md5"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"encoding/hex"
	"io"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/opencontainers/go-digest"
)

// FileMD5 returns the hex md5 of a file. Shipped package checksums are
// md5, so this is what they are compared against.
func FileMD5(fs types.FS, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FileDigest returns the canonical (sha256) digest of a file
func FileDigest(fs types.FS, path string) (digest.Digest, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return digest.Canonical.FromReader(file)
}
