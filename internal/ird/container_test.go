package ird

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// buildIrd assembles a minimal, valid IRD body (uncompressed) for tests.
func buildIrd(t *testing.T, header, footer []byte, files []FileHash) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString(Magic)
	buf.WriteByte(9) // version
	buf.WriteString("BLES00001")
	name := "Test Game"
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteString("0000")  // update_version (4)
	buf.WriteString("00000") // game_version (5)
	buf.WriteString("00000") // app_version (5)

	writeGzipBlob(t, &buf, header)
	writeGzipBlob(t, &buf, footer)

	buf.WriteByte(0) // n_regions

	var nFiles [4]byte
	binary.LittleEndian.PutUint32(nFiles[:], uint32(len(files)))
	buf.Write(nFiles[:])
	for _, f := range files {
		var sec [8]byte
		binary.LittleEndian.PutUint64(sec[:], f.Sector)
		buf.Write(sec[:])
		buf.Write(f.MD5[:])
	}

	return buf.Bytes()
}

func writeGzipBlob(t *testing.T, buf *bytes.Buffer, content []byte) {
	t.Helper()
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(content); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(compressed.Len()))
	buf.Write(length[:])
	buf.Write(compressed.Bytes())
}

func TestDecodeRoundTrip(t *testing.T) {
	sum := md5.Sum([]byte("header contents"))
	files := []FileHash{{Sector: 42, MD5: sum}}
	raw := buildIrd(t, []byte("header contents"), []byte("footer contents"), files)

	c, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.GameID != "BLES00001" {
		t.Fatalf("GameID=%q", c.GameID)
	}
	if c.GameName != "Test Game" {
		t.Fatalf("GameName=%q", c.GameName)
	}
	if string(c.HeaderBytes) != "header contents" {
		t.Fatalf("HeaderBytes=%q", c.HeaderBytes)
	}
	if string(c.FooterBytes) != "footer contents" {
		t.Fatalf("FooterBytes=%q", c.FooterBytes)
	}
	if len(c.FileHashes) != 1 || c.FileHashes[0].Sector != 42 {
		t.Fatalf("FileHashes=%v", c.FileHashes)
	}
	if md5sum, ok := c.Lookup(42); !ok || md5sum != sum {
		t.Fatalf("Lookup(42)=%x,%v", md5sum, ok)
	}
}

func TestDecodeAcceptsGzipWrapper(t *testing.T) {
	raw := buildIrd(t, []byte("h"), []byte("f"), nil)

	var wrapped bytes.Buffer
	zw := gzip.NewWriter(&wrapped)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	c, err := Decode(bytes.NewReader(wrapped.Bytes()))
	if err != nil {
		t.Fatalf("Decode(gzipped): %v", err)
	}
	if c.GameID != "BLES00001" {
		t.Fatalf("GameID=%q", c.GameID)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("NOPE0000000000"))); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	raw := buildIrd(t, []byte("h"), []byte("f"), nil)
	truncatedInput := raw[:len(raw)-10]
	if _, err := Decode(bytes.NewReader(truncatedInput)); err == nil {
		t.Fatal("expected error for truncated input")
	}
}
