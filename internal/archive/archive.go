// Package archive packages a staged bundle into a reproducible tar.gz and
// emits its SHA-256 sidecar.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/caskpack/caskpack/internal/helpers"
)

// epoch is the normalized member timestamp. Fixing it (together with sorted
// member order and zeroed ownership) makes the archive a pure function of
// the staged bytes, so the checksum doubles as a reproducibility check.
var epoch = time.Unix(0, 0)

// Create archives the staging root into archivePath as tar.gz. Member
// paths are prefixed with the staging root's base name, so extraction
// recreates the <app>-<platform_tag>/ directory.
func Create(stagingRoot, archivePath string) error {
	if err := helpers.RemovePath(archivePath); err != nil {
		return fmt.Errorf("failed to clean archive path %s: %w", archivePath, err)
	}
	if err := helpers.EnsureDir(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	members, err := collectMembers(stagingRoot)
	if err != nil {
		return err
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	prefix := filepath.Base(stagingRoot)
	for _, rel := range members {
		if err := writeMember(tw, stagingRoot, prefix, rel); err != nil {
			tw.Close()
			gz.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip stream: %w", err)
	}
	return out.Close()
}

// collectMembers walks the staging root and returns every entry's relative
// path in sorted order. Sorting here, not filesystem order, is what pins
// member ordering across machines.
func collectMembers(root string) ([]string, error) {
	var members []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		members = append(members, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk staging root %s: %w", root, err)
	}
	sort.Strings(members)
	return members, nil
}

func writeMember(tw *tar.Writer, root, prefix, rel string) error {
	path := filepath.Join(root, rel)
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", rel, err)
	}

	hdr.Name = prefix + "/" + filepath.ToSlash(rel)
	if info.IsDir() {
		hdr.Name += "/"
	}
	hdr.ModTime = epoch
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	hdr.Uid = 0
	hdr.Gid = 0
	hdr.Uname = ""
	hdr.Gname = ""
	hdr.Format = tar.FormatPAX

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", rel, err)
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		return f.Close()
	}
	return nil
}
