package combine

import "testing"

func validShare(idx int) ECDSAShare {
	return ECDSAShare{
		R:          "1111111111111111111111111111111111111111111111111111111111111111",
		S:          "2222222222222222222222222222222222222222222222222222222222222222",
		V:          27,
		DataSigned: "digest",
		ShareIndex: idx,
	}
}

func TestCombineECDSARequiresAgreement(t *testing.T) {
	shares := []ECDSAShare{validShare(0), validShare(1)}

	sig, err := CombineECDSA(shares, 2)
	if err != nil {
		t.Fatalf("CombineECDSA: %v", err)
	}
	if sig.R == "" || sig.S == "" {
		t.Fatal("expected non-empty R, S")
	}
}

func TestCombineECDSARejectsInsufficientAgreement(t *testing.T) {
	shares := []ECDSAShare{validShare(0)}

	if _, err := CombineECDSA(shares, 2); err == nil {
		t.Fatal("expected error for insufficient agreeing shares")
	}
}

func TestCombineECDSAPicksMajorityOverDisagreement(t *testing.T) {
	majority := validShare(0)
	disagreeing := ECDSAShare{
		R:          "3333333333333333333333333333333333333333333333333333333333333333",
		S:          "4444444444444444444444444444444444444444444444444444444444444444",
		V:          28,
		DataSigned: "digest",
		ShareIndex: 2,
	}

	shares := []ECDSAShare{majority, majority, disagreeing}

	sig, err := CombineECDSA(shares, 2)
	if err != nil {
		t.Fatalf("CombineECDSA: %v", err)
	}
	if sig.V != 27 {
		t.Fatalf("expected majority share's V=27, got %d", sig.V)
	}
}

func TestCombineECDSARejectsEmptyShares(t *testing.T) {
	if _, err := CombineECDSA(nil, 1); err == nil {
		t.Fatal("expected error for empty shares")
	}
}
