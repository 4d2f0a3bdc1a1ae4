package bytestream

import "testing"

func TestReadIntegers(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := New(data)

	if v, err := r.ReadU8(); err != nil || v != 0x01 {
		t.Fatalf("ReadU8=%d,%v want 1,nil", v, err)
	}
	r.Seek(0)
	if v, err := r.ReadU32LE(); err != nil || v != 0x04030201 {
		t.Fatalf("ReadU32LE=%x,%v want 4030201,nil", v, err)
	}
	r.Seek(0)
	if v, err := r.ReadU32BE(); err != nil || v != 0x01020304 {
		t.Fatalf("ReadU32BE=%x,%v want 1020304,nil", v, err)
	}
	r.Seek(0)
	if v, err := r.ReadU64LE(); err != nil || v != 0x0807060504030201 {
		t.Fatalf("ReadU64LE=%x,%v want 0807060504030201,nil", v, err)
	}
}

func TestReadFixedStringStripsPadding(t *testing.T) {
	r := New([]byte("BLES00001\x20\x20\x20"))
	s, err := r.ReadFixedString(12)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if s != "BLES00001" {
		t.Fatalf("got %q want BLES00001", s)
	}
}

func TestReadU8PrefixedString(t *testing.T) {
	r := New([]byte{5, 'H', 'e', 'l', 'l', 'o', 0xff})
	s, err := r.ReadU8PrefixedString()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if s != "Hello" {
		t.Fatalf("got %q want Hello", s)
	}
	if r.Pos() != 6 {
		t.Fatalf("pos=%d want 6", r.Pos())
	}
}

func TestWithOffsetRestoresPosition(t *testing.T) {
	r := New(make([]byte, 32))
	r.Seek(4)
	err := r.WithOffset(16, func(inner *Reader) error {
		if inner.Pos() != 16 {
			t.Fatalf("inner pos=%d want 16", inner.Pos())
		}
		_, e := inner.ReadU8()
		return e
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if r.Pos() != 4 {
		t.Fatalf("pos=%d want 4 (restored)", r.Pos())
	}
}

func TestShortReadError(t *testing.T) {
	r := New([]byte{1, 2})
	if _, err := r.ReadU32LE(); err == nil {
		t.Fatal("expected short-read error")
	}
}
