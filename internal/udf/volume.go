package udf

import (
	"errors"
	"fmt"

	"github.com/s0up4200/irdcheck/internal/bytestream"
)

// Sentinel errors, per spec.md §4.D/§7.
var (
	ErrNoVolumeRecognition = errors.New("udf: no NSR02/NSR03 descriptor found in volume recognition sequence")
	ErrAnchorNotFound      = errors.New("udf: anchor volume descriptor pointer not found")
	ErrMissingVolume       = errors.New("udf: main volume descriptor sequence missing a required descriptor")
	ErrAmbiguousVolume     = errors.New("udf: main volume descriptor sequence has a duplicated descriptor")
	ErrUnsupportedBlockSize = errors.New("udf: unsupported logical block size")
)

// Volume is the decoded result of component D: the handful of fields the
// directory walker (component E) needs to resolve partition-relative
// sectors to absolute ones and find the root directory.
type Volume struct {
	// HeaderBlob is the decompressed IRD header: the in-memory stand-in for
	// the first sectors of the original disc image that every decode in
	// this package reads from.
	HeaderBlob []byte

	BlockSize uint32

	// PartitionStart is the partition's starting sector as recorded in the
	// Partition Descriptor (disc-absolute, pre-skew).
	PartitionStart uint32
	PartitionLength uint32

	// FileSetSector is the partition-relative sector of the File Set
	// Descriptor, taken from the Logical Volume Descriptor.
	FileSetSector uint32

	RootDirectoryICB LongAD
}

// partitionStartEffective is the skewed base every absolute read against
// HeaderBlob must use, per spec.md §4.E / §9.
func (v *Volume) partitionStartEffective() int64 {
	return int64(v.PartitionStart) - PartitionStartSkewSectors
}

// Decode runs component D: locate the Volume Recognition Sequence, the
// Anchor Volume Descriptor Pointer, and the main volume descriptor
// sequence, and extract exactly the fields the walker needs.
func Decode(headerBlob []byte) (*Volume, error) {
	if err := verifyVolumeRecognitionSequence(headerBlob); err != nil {
		return nil, err
	}

	anchor, err := decodeAnchor(bytestream.New(headerBlob), AnchorSector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnchorNotFound, err)
	}
	if anchor.Tag.Identifier != TagAnchorVolumeDescriptorPointer {
		return nil, fmt.Errorf("%w: tag %d at sector %d", ErrAnchorNotFound, anchor.Tag.Identifier, AnchorSector)
	}

	v := &Volume{HeaderBlob: headerBlob}
	if err := v.readMainSequence(anchor.MainSequence); err != nil {
		return nil, err
	}
	if v.BlockSize != SectorSize {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBlockSize, v.BlockSize)
	}

	r := bytestream.New(headerBlob)
	fsdBase := (v.partitionStartEffective() + int64(v.FileSetSector)) * SectorSize
	fsd, err := decodeFileSetDescriptor(r, fsdBase)
	if err != nil {
		return nil, fmt.Errorf("udf: reading file set descriptor: %w", err)
	}
	if fsd.Tag.Identifier != TagFileSetDescriptor {
		return nil, fmt.Errorf("%w: file set descriptor tag %d at sector %d", ErrMissingVolume, fsd.Tag.Identifier, v.FileSetSector)
	}
	v.RootDirectoryICB = fsd.RootDirectoryICB

	return v, nil
}

// verifyVolumeRecognitionSequence walks 2048-byte Volume-Recognition
// descriptors starting at sector 16 until "TEA01", requiring at least one
// NSR02/NSR03 descriptor along the way.
func verifyVolumeRecognitionSequence(headerBlob []byte) error {
	r := bytestream.New(headerBlob)
	foundNSR := false

	for sector := int64(16); ; sector++ {
		offset := sector * SectorSize
		if offset+SectorSize > int64(len(headerBlob)) {
			break
		}
		r.Seek(offset)
		if _, err := r.ReadU8(); err != nil { // structure type, unused
			break
		}
		ident, err := r.ReadFixedString(5)
		if err != nil {
			break
		}

		switch ident {
		case StdIDTEA01:
			if !foundNSR {
				return ErrNoVolumeRecognition
			}
			return nil
		case StdIDNSR02, StdIDNSR03:
			foundNSR = true
		case StdIDBEA01, "":
			// Beginning-extended-area marker or padding: keep scanning.
		}
	}

	if !foundNSR {
		return ErrNoVolumeRecognition
	}
	return nil
}

// readMainSequence walks the main volume descriptor sequence extent,
// extracting the one Partition Descriptor and one Logical Volume
// Descriptor it requires.
func (v *Volume) readMainSequence(extent ExtentAD) error {
	r := bytestream.New(v.HeaderBlob)

	var sawPartition, sawLogicalVolume bool

	sectorCount := extent.Length / SectorSize
	if extent.Length%SectorSize != 0 {
		sectorCount++
	}

sequence:
	for i := uint32(0); i < sectorCount; i++ {
		base := (int64(extent.Location) + int64(i)) * SectorSize
		if base+TagSize > int64(len(v.HeaderBlob)) {
			break
		}
		r.Seek(base)
		tag, err := decodeTag(r)
		if err != nil {
			return fmt.Errorf("udf: reading volume descriptor sequence tag: %w", err)
		}

		switch tag.Identifier {
		case TagPartitionDescriptor:
			if sawPartition {
				return fmt.Errorf("%w: duplicate partition descriptor", ErrAmbiguousVolume)
			}
			pd, err := decodePartitionDescriptor(r, base)
			if err != nil {
				return fmt.Errorf("udf: reading partition descriptor: %w", err)
			}
			v.PartitionStart = pd.PartitionStartingLocation
			v.PartitionLength = pd.PartitionLength
			sawPartition = true

		case TagLogicalVolumeDescriptor:
			if sawLogicalVolume {
				return fmt.Errorf("%w: duplicate logical volume descriptor", ErrAmbiguousVolume)
			}
			lvd, err := decodeLogicalVolumeDescriptor(r, base)
			if err != nil {
				return fmt.Errorf("udf: reading logical volume descriptor: %w", err)
			}
			v.BlockSize = lvd.LogicalBlockSize
			v.FileSetSector = lvd.FileSetLocation
			sawLogicalVolume = true

		case TagTerminatingDescriptor:
			break sequence
		}
	}

	if !sawPartition || !sawLogicalVolume {
		return fmt.Errorf("%w: partition=%v logicalVolume=%v", ErrMissingVolume, sawPartition, sawLogicalVolume)
	}
	return nil
}
