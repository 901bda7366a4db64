package imagegen

import (
	"bytes"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	png, err := Render(CardData{
		Year:            2023,
		ForestArea:      775288,
		TreeCover:       112014,
		ReportingStates: 36,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("output is not a PNG")
	}
}

func TestGroup(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{775288, "775,288"},
		{3287469, "3,287,469"},
	}
	for _, tt := range tests {
		if got := group(tt.in); got != tt.want {
			t.Errorf("group(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCache(t *testing.T) {
	c := NewCache(time.Hour)
	if _, ok := c.Get(); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set([]byte("card"))
	data, ok := c.Get()
	if !ok || string(data) != "card" {
		t.Fatalf("Get = %q, %v; want card, true", data, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(-time.Second)
	c.Set([]byte("card"))
	if _, ok := c.Get(); ok {
		t.Fatal("expired entry should miss")
	}
}
