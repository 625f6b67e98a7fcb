package tcoaal_test

import (
	"bytes"
	"io"
	"testing"

	"reliquary/internal/fileset"
	"reliquary/internal/tcoaal"
	"reliquary/internal/testsupport"
)

func TestMaskVector(t *testing.T) {
	// Precomputed for basename "HERO": seed evolves as
	// m = m*2 ^ char over H, E, R, O.
	seed := byte('H')
	seed = seed*2 ^ 'E'
	seed = seed*2 ^ 'R'
	seed = seed*2 ^ 'O'

	cipher := []byte{0x10, 0x20, 0x30, 0x40}
	mask := tcoaal.NewMask("hero")
	var plain [4]byte
	m := seed
	for i, c := range cipher {
		plain[i] = mask.DecryptByte(c)
		want := c ^ m
		if plain[i] != want {
			t.Fatalf("byte %d = %#x, want %#x", i, plain[i], want)
		}
		m = m<<1 ^ c
	}
}

func TestDecodingIsOrderDependent(t *testing.T) {
	plain := []byte("the mask evolves with every ciphertext byte")
	enc := testsupport.MaskK9A("portrait", plain, 0)
	body := enc[len(tcoaal.Signature)+1:]

	// Decoding the bytes in reverse order must not reproduce the
	// plaintext; the cipher is strictly sequential.
	mask := tcoaal.NewMask("portrait")
	reversed := make([]byte, len(body))
	for i := len(body) - 1; i >= 0; i-- {
		reversed[i] = mask.DecryptByte(body[i])
	}
	if bytes.Equal(reversed, plain) {
		t.Fatal("out-of-order decoding must not succeed")
	}

	if got := tcoaal.Decrypt("portrait.k9a", enc); !bytes.Equal(got, plain) {
		t.Fatalf("in-order decoding failed: %q", got)
	}
}

func TestDeclaredLengthLimitsCiphertext(t *testing.T) {
	plain := []byte("0123456789abcdef")
	enc := testsupport.MaskK9A("clip", plain, 4)

	got := tcoaal.Decrypt("clip.k9a", enc)
	if !bytes.Equal(got, plain) {
		t.Fatalf("partial decode = %q", got)
	}
	// Bytes past the declared count are stored as cleartext.
	body := enc[len(tcoaal.Signature)+1:]
	if !bytes.Equal(body[4:], plain[4:]) {
		t.Fatal("trailing bytes must be cleartext in the container")
	}
}

func TestDecryptPassesThroughUnsignedData(t *testing.T) {
	plain := []byte("no signature here")
	if got := tcoaal.Decrypt("x", plain); !bytes.Equal(got, plain) {
		t.Fatalf("passthrough = %q", got)
	}
}

func TestTargetExtFollowsTopLevelDirectory(t *testing.T) {
	cases := map[string]string{
		"img/pictures/andrew": ".png",
		"audio/bgm/theme":     ".ogg",
		"data/map001":         ".json",
		"movies/intro.webm":   ".webm",
	}
	for canonical, want := range cases {
		if got := tcoaal.TargetExt(canonical); got != want {
			t.Errorf("TargetExt(%q) = %q, want %q", canonical, got, want)
		}
	}
}

func TestStreamDecodesAndRenames(t *testing.T) {
	plain := []byte("image payload")
	set := fileset.FromMemory(map[string][]byte{
		"www/img/pictures/leyley.k9a": testsupport.MaskK9A("leyley", plain, 0),
		"www/js/main.js":              []byte("boot();"),
	})
	stream := tcoaal.NewStream(set, "www/")

	var got []string
	for {
		asset, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, asset.Path)
		if asset.Path == "img/pictures/leyley.png" {
			if !bytes.Equal(asset.Content, plain) {
				t.Fatal("decoded content mismatch")
			}
			if asset.MIME != "image/png" {
				t.Fatalf("mime = %q", asset.MIME)
			}
		}
	}
	want := []string{"img/pictures/leyley.png", "js/main.js"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paths = %v, want %v", got, want)
		}
	}
}
