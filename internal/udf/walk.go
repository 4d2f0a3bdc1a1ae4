package udf

import (
	"fmt"

	"github.com/s0up4200/irdcheck/internal/tree"
)

// Warnf is called for every non-fatal condition the walker recovers from:
// a file entry whose allocation-descriptor count is not exactly one (a
// missing NSR marker is a fatal Decode error, not a warning). Callers that want the CLI's
// diagnostic output (spec.md §4.E step 2, §4.F) should set this; the zero
// value discards warnings.
var Warnf func(format string, args ...any)

func warnf(format string, args ...any) {
	if Warnf != nil {
		Warnf(format, args...)
	}
}

// BuildTree runs component E: starting from the File Set Descriptor's root
// directory ICB, recursively decode the directory structure into a
// tree.FileNode rooted at the disc's top-level directory.
func (v *Volume) BuildTree() (*tree.FileNode, error) {
	root := &tree.FileNode{Name: "", Children: []*tree.FileNode{}}
	if err := v.walkDirectory(v.RootDirectoryICB.ExtentLocation.LogicalBlockNumber, root); err != nil {
		return nil, err
	}
	return root, nil
}

// walkDirectory decodes the file entry at relEntrySector (partition-relative),
// then walks its one data extent as a sequence of FileIdentifierDescriptors,
// populating dir.Children.
func (v *Volume) walkDirectory(relEntrySector uint32, dir *tree.FileNode) error {
	fe, extent, err := v.resolveFileEntry(relEntrySector)
	if err != nil {
		return fmt.Errorf("udf: decoding directory entry at sector %d: %w", relEntrySector, err)
	}
	_ = fe

	if extent.Length == 0 {
		return nil
	}

	dataBase := (v.partitionStartEffective() + int64(extent.Sector)) * SectorSize
	dataEnd := dataBase + int64(extent.Length)
	if dataEnd > int64(len(v.HeaderBlob)) {
		return fmt.Errorf("udf: directory data at sector %d extends past header blob", relEntrySector)
	}

	data := v.HeaderBlob[dataBase:dataEnd]
	length := int64(extent.Length)

	var offset int64
	for offset < length {
		fid, err := decodeFileIdentifier(data, offset)
		if err != nil {
			return fmt.Errorf("udf: decoding file identifier in directory at sector %d: %w", relEntrySector, err)
		}
		offset += fid.TotalSize

		if fid.FileCharacteristics&FileCharParent != 0 {
			continue
		}

		childSector := fid.ICB.ExtentLocation.LogicalBlockNumber
		childFe, childExtent, err := v.resolveFileEntry(childSector)
		if err != nil {
			return fmt.Errorf("udf: decoding file entry at sector %d: %w", childSector, err)
		}
		_ = childFe

		absSector := uint64(v.partitionStartEffective() + int64(childExtent.Sector))

		child := &tree.FileNode{
			Name:   fid.Name,
			Sector: absSector,
			Size:   uint64(childExtent.Length),
		}

		if fid.FileCharacteristics&FileCharDirectory != 0 {
			child.Children = []*tree.FileNode{}
			if err := v.walkDirectory(childSector, child); err != nil {
				return err
			}
		}

		dir.Children = append(dir.Children, child)
	}

	return nil
}

// resolveFileEntry decodes the file entry at a partition-relative sector
// and returns its single allocation descriptor, per spec.md §4.E
// resolve(): "require len(allocation_descriptors) == 1; otherwise warn and
// use [0]".
func (v *Volume) resolveFileEntry(relSector uint32) (*fileEntry, ShortAD, error) {
	base := (v.partitionStartEffective() + int64(relSector)) * SectorSize
	if base < 0 || base+SectorSize > int64(len(v.HeaderBlob)) {
		return nil, ShortAD{}, fmt.Errorf("udf: sector %d out of range of header blob", relSector)
	}

	fe, err := decodeFileEntry(v.HeaderBlob[base : base+SectorSize])
	if err != nil {
		return nil, ShortAD{}, err
	}

	if fe.NumExtents != 1 {
		warnf("udf: file entry at sector %d has %d allocation descriptors, expected 1; using the first", relSector, fe.NumExtents)
	}

	return fe, fe.Extent, nil
}
