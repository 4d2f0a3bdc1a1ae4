package udf

import (
	"fmt"

	"github.com/s0up4200/irdcheck/internal/bytestream"
)

func decodeTag(r *bytestream.Reader) (Tag, error) {
	var t Tag
	ident, err := r.ReadU16LE()
	if err != nil {
		return t, err
	}
	t.Identifier = TagIdentifier(ident)
	if t.Version, err = r.ReadU16LE(); err != nil {
		return t, err
	}
	if t.Checksum, err = r.ReadU8(); err != nil {
		return t, err
	}
	if t.Reserved, err = r.ReadU8(); err != nil {
		return t, err
	}
	if t.SerialNumber, err = r.ReadU16LE(); err != nil {
		return t, err
	}
	if t.CRC, err = r.ReadU16LE(); err != nil {
		return t, err
	}
	if t.CRCLength, err = r.ReadU16LE(); err != nil {
		return t, err
	}
	if t.Sector, err = r.ReadU32LE(); err != nil {
		return t, err
	}
	return t, nil
}

func decodeLBAddr(r *bytestream.Reader) (LBAddr, error) {
	var a LBAddr
	var err error
	if a.LogicalBlockNumber, err = r.ReadU32LE(); err != nil {
		return a, err
	}
	if a.PartitionReferenceNumber, err = r.ReadU16LE(); err != nil {
		return a, err
	}
	return a, nil
}

func decodeExtentAD(r *bytestream.Reader) (ExtentAD, error) {
	var e ExtentAD
	var err error
	if e.Length, err = r.ReadU32LE(); err != nil {
		return e, err
	}
	if e.Location, err = r.ReadU32LE(); err != nil {
		return e, err
	}
	return e, nil
}

func decodeShortAD(r *bytestream.Reader) (ShortAD, error) {
	var a ShortAD
	raw, err := r.ReadU32LE()
	if err != nil {
		return a, err
	}
	a.Length = raw & 0x3FFFFFFF
	if a.Sector, err = r.ReadU32LE(); err != nil {
		return a, err
	}
	return a, nil
}

func decodeLongAD(r *bytestream.Reader) (LongAD, error) {
	var a LongAD
	var err error
	raw, err := r.ReadU32LE()
	if err != nil {
		return a, err
	}
	a.Length = raw & 0x3FFFFFFF
	if a.ExtentLocation, err = decodeLBAddr(r); err != nil {
		return a, err
	}
	impl, err := r.ReadBytes(6)
	if err != nil {
		return a, err
	}
	copy(a.ImplementationUse[:], impl)
	return a, nil
}

func decodeEntityID(r *bytestream.Reader) (EntityID, error) {
	var e EntityID
	var err error
	if e.Flags, err = r.ReadU8(); err != nil {
		return e, err
	}
	id, err := r.ReadBytes(23)
	if err != nil {
		return e, err
	}
	copy(e.Identifier[:], id)
	suf, err := r.ReadBytes(8)
	if err != nil {
		return e, err
	}
	copy(e.Suffix[:], suf)
	return e, nil
}

func decodeCharSpec(r *bytestream.Reader) (CharSpec, error) {
	var c CharSpec
	var err error
	if c.CharacterSetType, err = r.ReadU8(); err != nil {
		return c, err
	}
	info, err := r.ReadBytes(63)
	if err != nil {
		return c, err
	}
	copy(c.CharacterSetInfo[:], info)
	return c, nil
}

func decodeTimestamp(r *bytestream.Reader) (Timestamp, error) {
	var ts Timestamp
	var err error
	if ts.TypeAndTimezone, err = r.ReadU16LE(); err != nil {
		return ts, err
	}
	if ts.Year, err = r.ReadU16LE(); err != nil {
		return ts, err
	}
	if ts.Month, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Day, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Hour, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Minute, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Second, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Centiseconds, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.HundredthsUs, err = r.ReadU8(); err != nil {
		return ts, err
	}
	if ts.Microseconds, err = r.ReadU8(); err != nil {
		return ts, err
	}
	return ts, nil
}

// anchorVolumeDescriptorPointer is the fixed-location descriptor that names
// the main volume descriptor sequence extent.
type anchorVolumeDescriptorPointer struct {
	Tag                Tag
	MainSequence       ExtentAD
	ReserveSequence    ExtentAD
}

func decodeAnchor(r *bytestream.Reader, sector int64) (*anchorVolumeDescriptorPointer, error) {
	r.Seek(sector * SectorSize)
	tag, err := decodeTag(r)
	if err != nil {
		return nil, fmt.Errorf("udf: reading anchor tag: %w", err)
	}
	a := &anchorVolumeDescriptorPointer{Tag: tag}
	if a.MainSequence, err = decodeExtentAD(r); err != nil {
		return nil, fmt.Errorf("udf: reading anchor main sequence: %w", err)
	}
	if a.ReserveSequence, err = decodeExtentAD(r); err != nil {
		return nil, fmt.Errorf("udf: reading anchor reserve sequence: %w", err)
	}
	return a, nil
}

// partitionDescriptor carries the subset of ECMA-167 3/10 this core needs.
type partitionDescriptor struct {
	Tag                       Tag
	PartitionNumber           uint16
	PartitionStartingLocation uint32
	PartitionLength           uint32
}

func decodePartitionDescriptor(r *bytestream.Reader, base int64) (*partitionDescriptor, error) {
	r.Seek(base)
	tag, err := decodeTag(r)
	if err != nil {
		return nil, err
	}
	pd := &partitionDescriptor{Tag: tag}

	r.Seek(base + 22) // skip VolumeDescriptorSequenceNumber(4) + PartitionFlags(2)
	if pd.PartitionNumber, err = r.ReadU16LE(); err != nil {
		return nil, err
	}

	r.Seek(base + 188)
	if pd.PartitionStartingLocation, err = r.ReadU32LE(); err != nil {
		return nil, err
	}
	if pd.PartitionLength, err = r.ReadU32LE(); err != nil {
		return nil, err
	}
	return pd, nil
}

// logicalVolumeDescriptor carries the subset of ECMA-167 3/10.6 this core
// needs: the logical block size and the file-set descriptor's location.
type logicalVolumeDescriptor struct {
	Tag              Tag
	LogicalBlockSize uint32
	// FileSetLocation is the partition-relative sector of the File Set
	// Descriptor, taken from the first 8 bytes of
	// LogicalVolumeContentsUse (spec.md §4.D step 4).
	FileSetLocation uint32
}

func decodeLogicalVolumeDescriptor(r *bytestream.Reader, base int64) (*logicalVolumeDescriptor, error) {
	r.Seek(base)
	tag, err := decodeTag(r)
	if err != nil {
		return nil, err
	}
	lvd := &logicalVolumeDescriptor{Tag: tag}

	// base+20: DescriptorCharacterSet(64), base+84: LogicalVolumeIdentifier(128)
	r.Seek(base + 20 + 64 + 128)
	if lvd.LogicalBlockSize, err = r.ReadU32LE(); err != nil {
		return nil, err
	}

	// base+216: DomainIdentifier(32), then LogicalVolumeContentsUse(16).
	// Only the first 8 bytes (length and block number) are read; the
	// remaining 8 (partition reference and implementation use) are unused
	// here.
	contentsUseOffset := base + 20 + 64 + 128 + 4 + 32
	r.Seek(contentsUseOffset)
	content, err := decodeExtentAD(r)
	if err != nil {
		return nil, err
	}
	lvd.FileSetLocation = content.Location
	return lvd, nil
}

// fileSetDescriptor names the root directory's ICB.
type fileSetDescriptor struct {
	Tag              Tag
	RootDirectoryICB LongAD
}

func decodeFileSetDescriptor(r *bytestream.Reader, base int64) (*fileSetDescriptor, error) {
	r.Seek(base)
	tag, err := decodeTag(r)
	if err != nil {
		return nil, err
	}
	fsd := &fileSetDescriptor{Tag: tag}

	r.Seek(base + 400)
	if fsd.RootDirectoryICB, err = decodeLongAD(r); err != nil {
		return nil, err
	}
	return fsd, nil
}

// icbTag is the Information Control Block tag embedded at the start of a
// file entry's descriptor-specific fields.
type icbTag struct {
	FileType           uint8
	ParentICBLocation  LBAddr
	Flags              uint16
}

func decodeICBTag(r *bytestream.Reader) (icbTag, error) {
	var t icbTag
	// PriorRecordedNumberOfDirectEntries(4) + StrategyType(2) +
	// StrategyParameter(2) + MaximumNumberOfEntries(2) + Reserved(1)
	if _, err := r.ReadBytes(11); err != nil {
		return t, err
	}
	var err error
	if t.FileType, err = r.ReadU8(); err != nil {
		return t, err
	}
	if t.ParentICBLocation, err = decodeLBAddr(r); err != nil {
		return t, err
	}
	if t.Flags, err = r.ReadU16LE(); err != nil {
		return t, err
	}
	return t, nil
}

// fileEntrySize is the fixed-field size of a (non-extended) File Entry,
// before extended attributes and allocation descriptors.
const fileEntrySize = 176

// fileEntry is the subset of ECMA-167 4/14.9 needed to locate a file's data
// and report its size. Core supports exactly one ShortAD allocation
// descriptor per file entry.
type fileEntry struct {
	Tag               Tag
	ICBTag            icbTag
	InformationLength uint64
	AllocationType    uint8
	Extent            ShortAD
	NumExtents        int
}

// decodeFileEntry reads the file entry whose fixed block (one logical
// sector) is block. It requires exactly a TagFileEntry tag; extended file
// entries are rejected since no core PS3 disc produces them (spec.md §1
// Non-goals).
func decodeFileEntry(block []byte) (*fileEntry, error) {
	r := bytestream.New(block)
	tag, err := decodeTag(r)
	if err != nil {
		return nil, fmt.Errorf("udf: reading file entry tag: %w", err)
	}
	if tag.Identifier != TagFileEntry {
		return nil, fmt.Errorf("udf: unsupported file entry tag %d (extended file entries are not supported)", tag.Identifier)
	}

	fe := &fileEntry{Tag: tag}
	if fe.ICBTag, err = decodeICBTag(r); err != nil {
		return nil, fmt.Errorf("udf: reading icb tag: %w", err)
	}

	r.Seek(56)
	if fe.InformationLength, err = r.ReadU64LE(); err != nil {
		return nil, err
	}

	r.Seek(168)
	extAttrLen, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	allocDescLen, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}

	fe.AllocationType = uint8(fe.ICBTag.Flags & 0x7)

	allocOffset := int64(fileEntrySize) + int64(extAttrLen)
	allocEnd := allocOffset + int64(allocDescLen)
	if allocEnd > int64(len(block)) {
		return nil, fmt.Errorf("udf: allocation descriptors out of range (offset=%d length=%d blockLen=%d)", allocOffset, allocDescLen, len(block))
	}

	fe.NumExtents = int(allocDescLen / 8)
	if fe.NumExtents > 0 {
		ar := bytestream.New(block[allocOffset:allocEnd])
		sad, err := decodeShortAD(ar)
		if err != nil {
			return nil, fmt.Errorf("udf: reading allocation descriptor: %w", err)
		}
		fe.Extent = sad
	}

	return fe, nil
}

// fileIdentifierDescriptor is one directory entry (ECMA-167 4/14.4).
type fileIdentifierDescriptor struct {
	Tag                 Tag
	FileCharacteristics uint8
	ICB                 LongAD
	Name                string
	TotalSize           int64 // on-disk size including 4-byte alignment padding
}

// decodeFileIdentifier decodes one FID starting at offset off within data.
func decodeFileIdentifier(data []byte, off int64) (*fileIdentifierDescriptor, error) {
	if off+38 > int64(len(data)) {
		return nil, fmt.Errorf("udf: file identifier descriptor truncated at offset %d", off)
	}
	r := bytestream.New(data)
	r.Seek(off)

	tag, err := decodeTag(r)
	if err != nil {
		return nil, err
	}

	r.Seek(off + 16)
	if _, err := r.ReadU16LE(); err != nil { // FileVersionNumber
		return nil, err
	}
	characteristics, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	nameLen, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	icb, err := decodeLongAD(r)
	if err != nil {
		return nil, err
	}
	implUseLen, err := r.ReadU16LE()
	if err != nil {
		return nil, err
	}

	nameOffset := off + 38 + int64(implUseLen)
	nameEnd := nameOffset + int64(nameLen)
	if nameEnd > int64(len(data)) {
		return nil, fmt.Errorf("udf: file identifier name out of range at offset %d", off)
	}

	name := decodeOSTACompressedUnicode(data[nameOffset:nameEnd])

	total := int64(38) + int64(implUseLen) + int64(nameLen)
	total = (total + 3) &^ 3 // 4-byte alignment, per spec.md §4.E step 3

	return &fileIdentifierDescriptor{
		Tag:                 tag,
		FileCharacteristics: characteristics,
		ICB:                 icb,
		Name:                name,
		TotalSize:           total,
	}, nil
}
