/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package toolchain

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

type archiveFormat int

const (
	formatUnknown archiveFormat = iota
	formatZip
	formatTarGz
)

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

func (f archiveFormat) String() string {
	switch f {
	case formatZip:
		return "zip"
	case formatTarGz:
		return "tar.gz"
	case formatUnknown:
	}

	return "unknown"
}

// detectFormat inspects the leading bytes of the archive. The file name is
// only consulted to make the error message useful.
func detectFormat(path string) (archiveFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(zipMagic))

	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return formatUnknown, fmt.Errorf("failed to read archive header: %w", err)
	}

	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return formatZip, nil
	case bytes.HasPrefix(head, gzipMagic):
		return formatTarGz, nil
	}

	return formatUnknown, fmt.Errorf("%w: %s", errUnsupportedArchive, filepath.Base(path))
}

// extractArchive unpacks src into dest. Entries that would land outside dest
// or exceed maxEntryBytes abort the extraction.
func extractArchive(src, dest string, maxEntryBytes int64) error {
	format, err := detectFormat(src)
	if err != nil {
		return err
	}

	switch format {
	case formatZip:
		return extractZip(src, dest, maxEntryBytes)
	case formatTarGz:
		return extractTarGz(src, dest, maxEntryBytes)
	case formatUnknown:
	}

	return errUnsupportedArchive
}

func extractZip(src, dest string, maxEntryBytes int64) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}

			continue
		}

		if err := extractZipEntry(f, target, maxEntryBytes); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(f *zip.File, target string, maxEntryBytes int64) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	return writeEntry(target, rc, f.Mode().Perm(), maxEntryBytes)
}

func extractTarGz(src, dest string, maxEntryBytes int64) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode).Perm(), maxEntryBytes); err != nil {
				return err
			}
		default:
			// links and devices are never needed from a tool archive
		}
	}
}

func entryPath(dest, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	if clean == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %s", errUnsafeEntry, name)
	}

	return filepath.Join(dest, clean), nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode, maxEntryBytes int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}

	n, copyErr := io.Copy(out, io.LimitReader(r, maxEntryBytes+1))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(target), copyErr)
	case n > maxEntryBytes:
		return fmt.Errorf("%w: %s", errArchiveTooLarge, filepath.Base(target))
	}

	return closeErr
}

// findFile walks root looking for an exact file name match.
func findFile(root, name string) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && d.Name() == name {
			found = path

			return filepath.SkipAll
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	if found == "" {
		return "", fmt.Errorf("%w: %s", errFileNotInArchive, name)
	}

	return found, nil
}
