package combine

import (
	"encoding/hex"
	"testing"

	"github.com/cloudflare/circl/ecc/bls12381"
)

func compressedGeneratorHex(t *testing.T, multiple uint64) string {
	t.Helper()
	var scalar bls12381.Scalar
	scalar.SetUint64(multiple)

	var point bls12381.G1
	point.ScalarMult(&scalar, bls12381.G1Generator())

	return hex.EncodeToString(point.BytesCompressed())
}

func TestCombineBLSAggregatesShares(t *testing.T) {
	shares := []BLSShare{
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 0, CurveType: "BLS", DataSigned: "digest"},
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 1, CurveType: "BLS", DataSigned: "digest"},
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 2, CurveType: "BLS", DataSigned: "digest"},
	}

	got, err := CombineBLS(shares, 2)
	if err != nil {
		t.Fatalf("CombineBLS: %v", err)
	}

	want := compressedGeneratorHex(t, 3)
	if hex.EncodeToString(got) != want {
		t.Fatalf("got %x, want %s", got, want)
	}
}

func TestCombineBLSRejectsTooFewShares(t *testing.T) {
	shares := []BLSShare{
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 0, CurveType: "BLS", DataSigned: "digest"},
	}

	if _, err := CombineBLS(shares, 2); err == nil {
		t.Fatal("expected error for insufficient shares")
	}
}

func TestCombineBLSDropsIncompleteShares(t *testing.T) {
	shares := []BLSShare{
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 0, CurveType: "BLS", DataSigned: "digest"},
		{SignatureShare: "", ShareIndex: 1, CurveType: "BLS", DataSigned: "digest"},
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 2, CurveType: "BLS", DataSigned: "digest"},
	}

	got, err := CombineBLS(shares, 2)
	if err != nil {
		t.Fatalf("CombineBLS: %v", err)
	}

	want := compressedGeneratorHex(t, 2)
	if hex.EncodeToString(got) != want {
		t.Fatalf("got %x, want %s", got, want)
	}
}

func TestCombineBLSJwtAppendsSignature(t *testing.T) {
	shares := []BLSShare{
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 0, CurveType: "BLS", DataSigned: "digest", UnsignedJwt: "header.payload"},
		{SignatureShare: compressedGeneratorHex(t, 1), ShareIndex: 1, CurveType: "BLS", DataSigned: "digest", UnsignedJwt: "header.payload"},
	}

	jwt, err := CombineBLSJwt(shares, 2)
	if err != nil {
		t.Fatalf("CombineBLSJwt: %v", err)
	}
	if len(jwt) <= len("header.payload.") {
		t.Fatalf("jwt too short: %q", jwt)
	}
	if jwt[:len("header.payload.")] != "header.payload." {
		t.Fatalf("jwt missing expected prefix: %q", jwt)
	}
}
