// Package ird decodes the IRD ("ISO ReDump") sidecar container format: a
// PS3 disc's identity fields plus a compressed copy of its UDF volume
// metadata and a per-file MD5 table keyed by starting sector.
package ird

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/s0up4200/irdcheck/internal/bytestream"
)

// Magic is the fixed 4-byte signature every (decompressed) IRD file begins
// with.
const Magic = "3IRD"

// Sentinel errors, per spec.md §7.
var (
	ErrInvalidMagic    = errors.New("ird: invalid magic")
	ErrTruncated       = errors.New("ird: truncated file")
	ErrBadCompression  = errors.New("ird: bad gzip stream")
	ErrTooManyFiles    = errors.New("ird: implausible file-hash count")
	ErrTooManyRegions  = errors.New("ird: implausible region count")
)

// sane upper bounds guarding against a corrupt length prefix turning into a
// multi-gigabyte allocation.
const (
	maxRegions = 1 << 8   // u8 count, so this can never actually be exceeded
	maxFiles   = 1 << 24  // ~16M files; no real PS3 disc comes close
)

// FileHash is one (sector, md5) record from the IRD's file table.
type FileHash struct {
	Sector uint64
	MD5    [16]byte
}

// Container is the fully decoded IRD sidecar, per spec.md §3.
type Container struct {
	Version       uint8
	GameID        string
	GameName      string
	UpdateVersion string
	GameVersion   string
	AppVersion    string

	// HeaderBytes is the gzip-decompressed UDF header blob: the first
	// sectors of the original disc image, enough to walk its volume
	// descriptors and directory tree.
	HeaderBytes []byte
	// FooterBytes is the gzip-decompressed trailing blob (unused by
	// verification, retained for completeness and for tools that want to
	// inspect it).
	FooterBytes []byte

	Regions     [][16]byte
	FileHashes  []FileHash
}

// Decode reads and parses an IRD file from r. The outer gzip wrapper (if
// present) is transparent to the caller: a non-gzipped IRD is accepted
// exactly the same as a gzipped one.
func Decode(r io.Reader) (*Container, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ird: reading input: %w", err)
	}

	data := raw
	if decompressed, gzErr := tryGunzip(raw); gzErr == nil {
		data = decompressed
	}

	if len(data) < 4 || string(data[:4]) != Magic {
		return nil, fmt.Errorf("%w: first bytes are %q", ErrInvalidMagic, previewBytes(data))
	}

	return decodeBody(data)
}

func tryGunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func previewBytes(data []byte) []byte {
	n := len(data)
	if n > 4 {
		n = 4
	}
	return data[:n]
}

func decodeBody(data []byte) (*Container, error) {
	r := bytestream.New(data)

	magic, err := r.ReadFixedString(4)
	if err != nil || magic != Magic {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}

	c := &Container{}

	version, err := r.ReadU8()
	if err != nil {
		return nil, truncated("version", err)
	}
	c.Version = version

	if c.GameID, err = r.ReadFixedString(9); err != nil {
		return nil, truncated("game_id", err)
	}
	if c.GameName, err = r.ReadU8PrefixedString(); err != nil {
		return nil, truncated("game_name", err)
	}
	if c.UpdateVersion, err = r.ReadFixedString(4); err != nil {
		return nil, truncated("update_version", err)
	}
	if c.GameVersion, err = r.ReadFixedString(5); err != nil {
		return nil, truncated("game_version", err)
	}
	if c.AppVersion, err = r.ReadFixedString(5); err != nil {
		return nil, truncated("app_version", err)
	}

	if c.HeaderBytes, err = readPrefixedGzipBlob(r); err != nil {
		return nil, err
	}
	if c.FooterBytes, err = readPrefixedGzipBlob(r); err != nil {
		return nil, err
	}

	nRegions, err := r.ReadU8()
	if err != nil {
		return nil, truncated("n_regions", err)
	}
	if int(nRegions) > maxRegions {
		return nil, ErrTooManyRegions
	}
	c.Regions = make([][16]byte, nRegions)
	for i := range c.Regions {
		b, err := r.ReadBytes(16)
		if err != nil {
			return nil, truncated("regions", err)
		}
		copy(c.Regions[i][:], b)
	}

	nFiles, err := r.ReadU32LE()
	if err != nil {
		return nil, truncated("n_files", err)
	}
	if nFiles > maxFiles {
		return nil, ErrTooManyFiles
	}
	c.FileHashes = make([]FileHash, nFiles)
	for i := range c.FileHashes {
		sector, err := r.ReadU64LE()
		if err != nil {
			return nil, truncated("file sector", err)
		}
		md5, err := r.ReadBytes(16)
		if err != nil {
			return nil, truncated("file md5", err)
		}
		c.FileHashes[i].Sector = sector
		copy(c.FileHashes[i].MD5[:], md5)
	}

	return c, nil
}

func readPrefixedGzipBlob(r *bytestream.Reader) ([]byte, error) {
	length, err := r.ReadU32LE()
	if err != nil {
		return nil, truncated("blob length", err)
	}
	compressed, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, truncated("blob", err)
	}
	decompressed, err := tryGunzip(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompression, err)
	}
	return decompressed, nil
}

func truncated(field string, cause error) error {
	return fmt.Errorf("%w: reading %s: %v", ErrTruncated, field, cause)
}

// Lookup returns the MD5 recorded for an absolute sector, and whether one
// was found. Component F (internal/hashjoin) is the only intended caller of
// this during verification; it is exported so tools printing raw IRD
// content can look up sectors too.
func (c *Container) Lookup(sector uint64) ([16]byte, bool) {
	for _, fh := range c.FileHashes {
		if fh.Sector == sector {
			return fh.MD5, true
		}
	}
	return [16]byte{}, false
}
