package utils

import (
	"strconv"
	"testing"
)

func TestByteArrInt(t *testing.T) {
	d, err := ByteArrInt([]byte("5432786379334"))
	if err != nil || d != 5432786379334 {
		t.Errorf("got %d err %v", d, err)
	}
	if _, err := ByteArrInt([]byte("12a4")); err == nil {
		t.Errorf("expected error for non digit input")
	}
}

func TestMinMaxAbs(t *testing.T) {
	if MinInt(3, 7) != 3 || MinInt(7, 3) != 3 {
		t.Errorf("MinInt broken")
	}
	if MaxInt(3, 7) != 7 || MaxInt(7, 3) != 7 {
		t.Errorf("MaxInt broken")
	}
	if AbsInt(-5) != 5 || AbsInt(5) != 5 {
		t.Errorf("AbsInt broken")
	}
}

func TestBytesEqual(t *testing.T) {
	a := []byte("Gopher!HelloGopher!")
	b := []byte("Gopher!HelloGopher!")
	if !BytesEqual(a, b) {
		t.Errorf("equal slices reported unequal")
	}
	if BytesEqual(a, b[:len(b)-1]) {
		t.Errorf("different lengths reported equal")
	}
}

func Benchmark_Byte2String(b *testing.B) {
	x := []byte("Hello Gopher! Hello Gopher! Hello Gopher!")
	for i := 0; i < b.N; i++ {
		_ = Bytes2String(x)
	}
}

func Benchmark_BytesEqual(t *testing.B) {
	a := []byte("Gopher!HelloGopher!HelloGopher!Gopher!HelloGopher!HelloGopher!")
	b := []byte("Gopher!HelloGopher!HelloGopher!Gopher!HelloGopher!HelloGopher!")
	for i := 0; i < t.N; i++ {
		BytesEqual(a, b)
	}
}

func Benchmark_ByteArrInt(t *testing.B) {
	a := []byte("5432786379334")
	for i := 0; i < t.N; i++ {
		ByteArrInt(a)
	}
}

func Benchmark_strconv(t *testing.B) {
	a := 5432786379334
	for i := 0; i < t.N; i++ {
		strconv.Itoa(a)
	}
}
