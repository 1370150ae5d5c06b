package manifest

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"

	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/moulerr"
)

// packPakKey is fixed rather than per-channel-derived: the .pak is a
// static build artifact served to every client regardless of which
// channel's DH parameters are configured, so it cannot share a
// connection's ephemeral key (spec.md §9 design note leaves the exact
// keying unspecified; a build-time constant is the only value both the
// build step and every future download of the same .pak can agree on).
var packPakKey = []byte("moulars-pak-v1")

// packPak tars every compiled .pyc under pySrc and RC4-encrypts the
// result into outPath (spec.md §4.G "compile .py under Python/ into a
// single encrypted .pak").
func packPak(pySrc, outPath string) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := filepath.Walk(pySrc, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".pyc" {
			return nil
		}
		rel, err := filepath.Rel(pySrc, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hdr := &tar.Header{Name: filepath.ToSlash(rel), Size: int64(len(data)), Mode: 0o644}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if err != nil {
		return moulerr.New(moulerr.IO, "manifest.packPak: walk", err)
	}
	if err := tw.Close(); err != nil {
		return moulerr.New(moulerr.IO, "manifest.packPak: tar close", err)
	}

	cipher, err := crypt.NewRC4(packPakKey)
	if err != nil {
		return moulerr.New(moulerr.IO, "manifest.packPak: rc4", err)
	}
	out := make([]byte, buf.Len())
	cipher.XORKeyStream(out, buf.Bytes())

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return moulerr.New(moulerr.IO, "manifest.packPak", err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return moulerr.New(moulerr.IO, "manifest.packPak", err)
	}
	return nil
}
