// Package verify implements the tree-diff verifier, component G: it walks
// an on-disk directory tree against the expected tree produced by
// internal/udf and enriched by internal/hashjoin, classifying every entry
// and accumulating the counters spec.md §4.G and §8 define.
package verify

import (
	"crypto/md5"
	"fmt"
	"io"

	"github.com/s0up4200/irdcheck/internal/fs"
	"github.com/s0up4200/irdcheck/internal/tree"
)

// hashChunkSize is the streamed read size used when computing an on-disk
// file's MD5, per spec.md §4.G ("streaming ... in 4 KiB blocks").
const hashChunkSize = 4096

// Counters accumulates every classification spec.md §4.G and §8 name.
type Counters struct {
	FilesOnDisk       int
	FilesInIrd        int
	FilesOK           int
	FilesDiskOnly     int
	FilesIrdOnly      int
	FilesSizeMismatch int
	FilesHashMismatch int

	DirsOnDisk   int
	DirsInIrd    int
	DirsOK       int
	DirsDiskOnly int
	DirsIrdOnly  int

	DirFileMismatch int
}

// Valid reports the verdict spec.md §4.G defines: GAME DATA VALID iff the
// disk and IRD file counts agree and no file was counted as disk-only,
// IRD-only, size-mismatched or hash-mismatched. The directory counters and
// DirFileMismatch are not consulted.
func (c Counters) Valid() bool {
	if c.FilesOnDisk != c.FilesInIrd {
		return false
	}
	return c.FilesDiskOnly+c.FilesIrdOnly+c.FilesSizeMismatch+c.FilesHashMismatch == 0
}

// Warnf receives one diagnostic line per entry verify classifies as
// anything other than ok, matching irdcheck.py's per-entry print
// statements. The zero value discards diagnostics.
var Warnf func(format string, args ...any)

func warnf(format string, args ...any) {
	if Warnf != nil {
		Warnf(format, args...)
	}
}

// Run walks expected against root (the on-disk directory path in fsys) and
// returns the accumulated counters. expected must be a directory node (the
// tree's root); root is its on-disk counterpart.
func Run(fsys fs.FileSystem, root string, expected *tree.FileNode) (Counters, error) {
	dir, err := fsys.GetDirectoryInfo(root)
	if err != nil {
		return Counters{}, fmt.Errorf("verify: opening %s: %w", root, err)
	}
	var c Counters
	if err := checkDir(dir, expected, root, &c); err != nil {
		return Counters{}, err
	}
	return c, nil
}

// entry is one merged disk/IRD child at a given directory level, built the
// way irdcheck.py's GameDir._check merges its two entry lists.
type entry struct {
	name     string
	onDisk   bool
	inIrd    bool
	diskFile fs.FileInfo
	diskDir  fs.DirectoryInfo
	expected *tree.FileNode
}

func checkDir(dir fs.DirectoryInfo, expected *tree.FileNode, fullPath string, c *Counters) error {
	merged, err := mergeDir(dir, expected)
	if err != nil {
		return err
	}

	for _, e := range merged {
		entryPath := fullPath + "/" + e.name

		if e.onDisk {
			if e.diskDir != nil {
				c.DirsOnDisk++
			} else {
				c.FilesOnDisk++
			}
		}
		if e.inIrd {
			if e.expected.IsDir() {
				c.DirsInIrd++
			} else {
				c.FilesInIrd++
			}
		}

		switch {
		case e.onDisk && !e.inIrd:
			warnf("%s not in IRD", entryPath)
			if e.diskDir != nil {
				c.DirsDiskOnly++
			} else {
				c.FilesDiskOnly++
			}

		case !e.onDisk && e.inIrd:
			warnf("%s not on disk", entryPath)
			if e.expected.IsDir() {
				c.DirsIrdOnly++
			} else {
				c.FilesIrdOnly++
			}

		case (e.diskDir != nil) != e.expected.IsDir():
			warnf("%s is file and should be dir or vice versa", entryPath)
			c.DirFileMismatch++

		case e.diskDir == nil:
			if err := checkFile(e, entryPath, c); err != nil {
				return err
			}

		default:
			c.DirsOK++
		}

		if e.diskDir != nil || (e.expected != nil && e.expected.IsDir()) {
			// Recurse whenever either side has a directory here, even when
			// the other side has nothing at all: a disk-only directory
			// still needs every descendant classified as disk-only, and an
			// IRD-only directory (missing from disk entirely) still needs
			// every descendant classified as IRD-only. Matches
			// irdcheck.py's unconditional os.walk-then-diff behaviour,
			// which pre-populates the full disk tree before ever looking at
			// the IRD side.
			subDir := e.diskDir
			if subDir == nil {
				subDir = emptyDirectoryInfo{name: e.name, fullName: entryPath}
			}
			subExpected := e.expected
			if subExpected == nil || !subExpected.IsDir() {
				subExpected = &tree.FileNode{Children: []*tree.FileNode{}}
			}
			if err := checkDir(subDir, subExpected, entryPath, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFile(e entry, entryPath string, c *Counters) error {
	diskSize := e.diskFile.Length()
	if diskSize != int64(e.expected.Size) {
		warnf("size mismatch in %s: %d on disk, %d in IRD", entryPath, diskSize, e.expected.Size)
		c.FilesSizeMismatch++
		return nil
	}

	sum, err := hashFile(e.diskFile)
	if err != nil {
		return fmt.Errorf("verify: hashing %s: %w", entryPath, err)
	}

	if e.expected.MD5 == nil || sum != *e.expected.MD5 {
		warnf("hash mismatch in %s", entryPath)
		c.FilesHashMismatch++
		return nil
	}

	c.FilesOK++
	return nil
}

func hashFile(f fs.FileInfo) ([16]byte, error) {
	r, err := f.OpenRead()
	if err != nil {
		return [16]byte{}, err
	}
	defer r.Close()

	h := md5.New()
	buf := make([]byte, hashChunkSize)
	// Hide any WriterTo on r (*os.File has one) so CopyBuffer reads
	// through buf instead of bypassing it.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{r}, buf); err != nil {
		return [16]byte{}, err
	}
	var sum [16]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// emptyDirectoryInfo stands in for a directory that exists only in the IRD
// (absent from disk entirely), so checkDir can still recurse into its
// expected children and have them classify as IRD-only, symmetric to the
// empty-subExpected stand-in used on the disk-only side above.
type emptyDirectoryInfo struct {
	name     string
	fullName string
}

func (e emptyDirectoryInfo) Name() string     { return e.name }
func (e emptyDirectoryInfo) FullName() string { return e.fullName }
func (e emptyDirectoryInfo) GetFiles() ([]fs.FileInfo, error) {
	return nil, nil
}
func (e emptyDirectoryInfo) GetDirectories() ([]fs.DirectoryInfo, error) {
	return nil, nil
}

// mergeDir builds the merged disk/IRD entry list for one directory level,
// per spec.md §4.G steps 1-3: disk entries first (on_disk=true), then IRD
// children matched by name (in_ird=true) or appended (on_disk=false).
func mergeDir(dir fs.DirectoryInfo, expected *tree.FileNode) ([]entry, error) {
	var merged []entry
	index := map[string]int{}

	files, err := dir.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("verify: listing files in %s: %w", dir.FullName(), err)
	}
	for _, f := range files {
		index[f.Name()] = len(merged)
		merged = append(merged, entry{name: f.Name(), onDisk: true, diskFile: f})
	}

	dirs, err := dir.GetDirectories()
	if err != nil {
		return nil, fmt.Errorf("verify: listing directories in %s: %w", dir.FullName(), err)
	}
	for _, d := range dirs {
		index[d.Name()] = len(merged)
		merged = append(merged, entry{name: d.Name(), onDisk: true, diskDir: d})
	}

	for _, child := range expected.Children {
		if i, ok := index[child.Name]; ok {
			merged[i].inIrd = true
			merged[i].expected = child
			continue
		}
		merged = append(merged, entry{name: child.Name, inIrd: true, expected: child})
	}

	return merged, nil
}
