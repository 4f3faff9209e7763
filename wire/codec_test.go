package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestFixedConversion(t *testing.T) {
	tests := []struct {
		name  string
		float float64
	}{
		{"zero", 0.0},
		{"positive integer", 42.0},
		{"negative integer", -42.0},
		{"positive fraction", 3.5},
		{"negative fraction", -3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixedFromFloat(tt.float).Float()
			const epsilon = 0.004
			if diff := got - tt.float; diff < -epsilon || diff > epsilon {
				t.Errorf("FixedFromFloat(%v).Float() = %v, want %v", tt.float, got, tt.float)
			}
		})
	}
}

func TestEncodeDecodeUint32(t *testing.T) {
	enc := NewEncoder(16)
	enc.PutUint32(0xdeadbeef)
	dec := NewDecoder(enc.Bytes())
	got, err := dec.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xdeadbeef {
		t.Errorf("got %x, want %x", got, 0xdeadbeef)
	}
}

func TestEncodeDecodeString(t *testing.T) {
	tests := []string{"", "a", "wl_compositor", "four"}
	for _, s := range tests {
		enc := NewEncoder(32)
		enc.PutString(s)
		if len(enc.Bytes())%4 != 0 {
			t.Fatalf("encoded string %q not word-aligned: %d bytes", s, len(enc.Bytes()))
		}
		dec := NewDecoder(enc.Bytes())
		got, err := dec.String(false)
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("round-trip %q, got %q", s, got)
		}
		if dec.HasMore() {
			t.Errorf("decoder has leftover bytes after string %q", s)
		}
	}
}

func TestNullString(t *testing.T) {
	enc := NewEncoder(8)
	enc.PutNullString()
	dec := NewDecoder(enc.Bytes())
	got, err := dec.String(true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("expected empty string for null, got %q", got)
	}

	// A null string decoded as non-nullable is a protocol error.
	dec2 := NewDecoder(enc.Bytes())
	if _, err := dec2.String(false); !errors.Is(err, ErrMalformedString) {
		t.Errorf("expected ErrMalformedString, got %v", err)
	}
}

func TestEncodeDecodeArray(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	enc := NewEncoder(16)
	enc.PutArray(data)
	dec := NewDecoder(enc.Bytes())
	got, err := dec.Array()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round-trip array: got %v, want %v", got, data)
	}
}

func TestDecodeTruncatedArgument(t *testing.T) {
	dec := NewDecoder([]byte{1, 2, 3}) // 3 bytes: not enough for a uint32
	if _, err := dec.Uint32(); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestEncodeDecodeMessageHeader(t *testing.T) {
	args := []byte{1, 2, 3, 4}
	data, err := EncodeMessage(7, 3, args)
	if err != nil {
		t.Fatal(err)
	}
	id, opcode, size, err := DecodeHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 || opcode != 3 || size != HeaderSize+len(args) {
		t.Errorf("got id=%d opcode=%d size=%d", id, opcode, size)
	}
}

func TestDecodeMessageWrongSize(t *testing.T) {
	// Header claims a 16-byte message but only the 8-byte header follows.
	data, _ := EncodeMessage(1, 0, make([]byte, 8))
	truncated := data[:HeaderSize]
	if _, _, err := DecodeMessage(truncated); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestMessageTooLarge(t *testing.T) {
	_, err := EncodeMessage(1, 0, make([]byte, MaxMessageSize))
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}
