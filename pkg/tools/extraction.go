package tools

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/mholt/archiver"
	"github.com/xi2/xz"
)

// decompressor wraps a compressed stream into the tar stream it contains
type decompressor func(r io.Reader) (io.ReadCloser, error)

func gzipDecompressor(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func xzDecompressor(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r, xz.DefaultDictMax)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

// detectSingleTopLevelDirectory checks if all entry names are under a single top-level directory.
// Returns the directory prefix to strip, or empty string if no stripping should be done.
func detectSingleTopLevelDirectory(names []string) string {
	var topLevelDir string
	for _, name := range names {
		name = strings.TrimPrefix(name, "./")
		// Skip empty entries
		if name == "" {
			continue
		}

		firstComponent := strings.SplitN(name, "/", 2)[0]
		if firstComponent == "" {
			return "" // Absolute path, don't strip
		}
		if !strings.Contains(name, "/") && !strings.HasSuffix(name, "/") {
			return "" // A file at the root, don't strip
		}

		if topLevelDir == "" {
			topLevelDir = firstComponent
		} else if topLevelDir != firstComponent {
			return "" // Multiple top-level directories, don't strip
		}
	}

	if topLevelDir != "" {
		return topLevelDir + "/"
	}
	return ""
}

// safeJoin joins an archive entry name to dest, refusing entries escaping it
func safeJoin(dest, name string) (string, error) {
	targetPath := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, targetPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return targetPath, nil
}

// openTar opens a compressed tar archive
func openTar(src string, decompress decompressor) (*tar.Reader, func(), error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}
	stream, err := decompress(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to read compressed stream: %w", err)
	}
	return tar.NewReader(stream), func() {
		stream.Close()
		file.Close()
	}, nil
}

// extractTarFile extracts a compressed tar file to the destination directory,
// stripping a single top-level directory such as node-v14.18.0-linux-x64/ or package/
func extractTarFile(src, dest string, decompress decompressor) error {
	// First pass: collect all names to detect single top-level directory
	tarReader, closeFn, err := openTar(src, decompress)
	if err != nil {
		return err
	}
	var names []string
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			closeFn()
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		names = append(names, header.Name)
	}
	closeFn()

	stripPrefix := detectSingleTopLevelDirectory(names)

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Second pass: extract files
	tarReader, closeFn, err = openTar(src, decompress)
	if err != nil {
		return err
	}
	defer closeFn()

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		relativePath := strings.TrimPrefix(header.Name, "./")
		if stripPrefix != "" {
			relativePath = strings.TrimPrefix(relativePath, stripPrefix)
		}
		if relativePath == "" || relativePath == "/" {
			continue // Skip the directory itself
		}

		targetPath, err := safeJoin(dest, relativePath)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, os.FileMode(header.Mode)|0700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", targetPath, err)
			}
		case tar.TypeReg:
			if err := extractSingleTarFile(tarReader, targetPath, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to extract file %s: %w", targetPath, err)
			}
		case tar.TypeSymlink:
			if err := createSymlinkSafely(header.Linkname, targetPath); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", targetPath, err)
			}
		default:
			// Skip other file types (char devices, block devices, etc.)
			logVerbose("Skipping unsupported file type %d for %s", header.Typeflag, header.Name)
		}
	}

	return nil
}

// extractSingleTarFile extracts a single file from tar reader
func extractSingleTarFile(tarReader *tar.Reader, targetPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return err
	}

	// Ensure we have write permissions for the file
	if mode&0200 == 0 {
		mode |= 0200
	}

	file, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, tarReader); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// createSymlinkSafely creates a symlink, handling existing files/symlinks
func createSymlinkSafely(linkname, targetPath string) error {
	if _, err := os.Lstat(targetPath); err == nil {
		if existingLink, err := os.Readlink(targetPath); err == nil && existingLink == linkname {
			return nil
		}
		if err := os.RemoveAll(targetPath); err != nil {
			return fmt.Errorf("failed to remove existing file %s: %w", targetPath, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return err
	}
	return os.Symlink(linkname, targetPath)
}

// extractZipFile extracts a zip file, then lifts the content of a single top-level directory
func extractZipFile(src, dest string) error {
	z := archiver.NewZip()
	z.OverwriteExisting = true
	z.MkdirAll = true
	if err := z.Unarchive(src, dest); err != nil {
		return fmt.Errorf("failed to extract ZIP archive: %w", err)
	}
	return stripSingleTopLevelDirectory(dest)
}

// stripSingleTopLevelDirectory moves the children of dest's only subdirectory into dest
func stripSingleTopLevelDirectory(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	// Rename first so a child named like its parent cannot collide
	top := filepath.Join(dest, ".hnvm-strip-"+entries[0].Name())
	if err := os.Rename(filepath.Join(dest, entries[0].Name()), top); err != nil {
		return err
	}
	children, err := os.ReadDir(top)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(top, child.Name()), filepath.Join(dest, child.Name())); err != nil {
			return fmt.Errorf("failed to move %s: %w", child.Name(), err)
		}
	}
	return os.Remove(top)
}

// detectArchiveType detects the archive type from file extension, "" when unknown
func detectArchiveType(filename string) string {
	filename = strings.ToLower(filename)
	if i := strings.IndexAny(filename, "?#"); i >= 0 {
		filename = filename[:i]
	}

	switch {
	case strings.HasSuffix(filename, ExtTarGz), strings.HasSuffix(filename, ExtTgz):
		return ArchiveTypeTarGz
	case strings.HasSuffix(filename, ExtTarXz):
		return ArchiveTypeTarXz
	case strings.HasSuffix(filename, ExtZip):
		return ArchiveTypeZip
	}
	return ""
}

// ExtractArchive extracts an archive file into dest, detecting the type from its name
func ExtractArchive(src, dest string) error {
	switch archiveType := detectArchiveType(src); archiveType {
	case ArchiveTypeZip:
		return extractZipFile(src, dest)
	case ArchiveTypeTarGz:
		return extractTarFile(src, dest, gzipDecompressor)
	case ArchiveTypeTarXz:
		return extractTarFile(src, dest, xzDecompressor)
	default:
		return fmt.Errorf("unsupported archive type: %s", filepath.Base(src))
	}
}
