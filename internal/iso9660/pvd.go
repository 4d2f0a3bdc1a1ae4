// Package iso9660 decodes the ISO9660 Primary Volume Descriptor embedded at
// sector 16 of a disc image. PS3 discs carry both an ISO9660 and a UDF
// volume structure side by side ("bridge" format); only the UDF side is
// required for verification (internal/udf), so this package exists purely
// as a recognised, diagnostic-only decoder — its directory walk is never
// invoked by the verification path.
package iso9660

import (
	"errors"
	"fmt"

	"github.com/s0up4200/irdcheck/internal/bytestream"
)

// SectorSize is the fixed logical block size this core supports; anything
// else is rejected per spec.md §8 boundary behaviour.
const SectorSize = 2048

// PvdSector is the sector at which the Primary Volume Descriptor lives.
const PvdSector = 16

var (
	// ErrNotPrimaryVolumeDescriptor is returned when the sector at PvdSector
	// is not type=1/"CD001".
	ErrNotPrimaryVolumeDescriptor = errors.New("iso9660: sector 16 is not a primary volume descriptor")
	// ErrUnsupportedBlockSize is returned for any declared logical block
	// size other than SectorSize.
	ErrUnsupportedBlockSize = errors.New("iso9660: unsupported logical block size")
)

// DirectoryRecord is one entry of the ISO9660 directory table: kept for
// diagnostic decoding only (see package doc).
type DirectoryRecord struct {
	Length        uint8
	ExtentSector  uint32
	DataLength    uint32
	Name          string
	IsDirectory   bool
}

// PrimaryVolumeDescriptor is the fixed-layout structure at sector 16.
type PrimaryVolumeDescriptor struct {
	Type             uint8
	Identifier       string
	VolumeIdentifier string
	VolumeSpaceSize  uint32
	LogicalBlockSize uint16
	RootExtentSector uint32
	RootDataLength   uint32
}

// Decode reads the PVD from a header blob that begins at the first sector
// of the disc image (byte offset 0 == sector 0), i.e. the same blob
// internal/udf walks. It returns ErrNotPrimaryVolumeDescriptor if the
// sector doesn't carry the expected "CD001" identifier — which is the
// normal case for a pure-UDF dump that only kept the header bytes a
// PS3-disc UDF walk needs.
func Decode(headerBlob []byte) (*PrimaryVolumeDescriptor, error) {
	offset := int64(PvdSector) * SectorSize
	if offset+SectorSize > int64(len(headerBlob)) {
		return nil, fmt.Errorf("iso9660: header blob too short for sector %d", PvdSector)
	}

	r := bytestream.New(headerBlob)
	r.Seek(offset)

	typ, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading type: %w", err)
	}
	ident, err := r.ReadFixedString(5)
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading identifier: %w", err)
	}
	if typ != 1 || ident != "CD001" {
		return nil, ErrNotPrimaryVolumeDescriptor
	}

	// version (1) + unused (1)
	r.Seek(offset + 8 + 32)
	volID, err := r.ReadFixedString(32)
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading volume identifier: %w", err)
	}

	r.Seek(offset + 80)
	volSpaceSize, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading volume space size: %w", err)
	}

	r.Seek(offset + 128)
	blockSize, err := r.ReadU16LE()
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading block size: %w", err)
	}
	if blockSize != SectorSize {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBlockSize, blockSize)
	}

	// root directory record begins at offset 156 within the PVD and is
	// itself a DirectoryRecord; the extent sector sits 2 bytes in.
	r.Seek(offset + 156 + 2)
	rootExtent, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading root extent: %w", err)
	}
	r.Seek(offset + 156 + 10)
	rootLength, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("iso9660: reading root data length: %w", err)
	}

	return &PrimaryVolumeDescriptor{
		Type:             typ,
		Identifier:       ident,
		VolumeIdentifier: volID,
		VolumeSpaceSize:  volSpaceSize,
		LogicalBlockSize: blockSize,
		RootExtentSector: rootExtent,
		RootDataLength:   rootLength,
	}, nil
}

// WalkDirectory decodes the flat directory-record table for one extent.
// This is the "optional" ISO9660 directory walk spec.md §1/§4.C mentions:
// it is never called from the UDF-based verification path and exists only
// so the decoder is complete for callers that want to inspect the ISO9660
// side of a bridge-format disc.
func WalkDirectory(headerBlob []byte, extentSector uint32, length uint32) ([]DirectoryRecord, error) {
	offset := int64(extentSector) * SectorSize
	end := offset + int64(length)
	if end > int64(len(headerBlob)) {
		return nil, fmt.Errorf("iso9660: directory extent out of range")
	}

	r := bytestream.New(headerBlob)
	r.Seek(offset)

	var records []DirectoryRecord
	for r.Pos() < end {
		recStart := r.Pos()
		recLen, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if recLen == 0 {
			// Padding to the next sector boundary: stop here.
			break
		}

		r.Seek(recStart + 2)
		extent, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		r.Seek(recStart + 10)
		dataLen, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		r.Seek(recStart + 25)
		flags, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		r.Seek(recStart + 32)
		nameLen, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadFixedString(int(nameLen))
		if err != nil {
			return nil, err
		}
		// Strip the ";1" version suffix ISO9660 file names carry.
		if len(name) >= 2 && name[len(name)-2:] == ";1" {
			name = name[:len(name)-2]
		}

		records = append(records, DirectoryRecord{
			Length:       recLen,
			ExtentSector: extent,
			DataLength:   dataLen,
			Name:         name,
			IsDirectory:  flags&0x02 != 0,
		})

		r.Seek(recStart + int64(recLen))
	}

	return records, nil
}
