package model

import (
	"strings"
	"testing"
)

const validCIDv0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestIsValidCID(t *testing.T) {
	cases := []struct {
		cid  string
		want bool
	}{
		{validCIDv0, true},
		{"b" + strings.Repeat("a", 58), true},
		{"bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", true},
		{"", false},
		{"Qm" + strings.Repeat("0", 44), false}, // 0 is not base58
		{"QmTooShort", false},
		{validCIDv0 + "x", false},
		{"b" + strings.Repeat("a", 57), false}, // too short for CIDv1
		{"B" + strings.Repeat("a", 58), false}, // prefix is case sensitive
	}

	for _, c := range cases {
		if got := IsValidCID(c.cid); got != c.want {
			t.Errorf("IsValidCID(%q) = %v, want %v", c.cid, got, c.want)
		}
	}
}

func TestIsValidWalletAddress(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"0x" + strings.Repeat("ab", 20), true},
		{"0x" + strings.Repeat("AB", 20), true},
		{"0x" + strings.Repeat("ab", 19), false},
		{strings.Repeat("ab", 21), false},
		{"0x" + strings.Repeat("zz", 20), false},
		{"", false},
	}

	for _, c := range cases {
		if got := IsValidWalletAddress(c.addr); got != c.want {
			t.Errorf("IsValidWalletAddress(%q) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestIsValidTransactionHash(t *testing.T) {
	if !IsValidTransactionHash("0x" + strings.Repeat("1f", 32)) {
		t.Error("expected 64-hex hash to be valid")
	}
	if IsValidTransactionHash("0x" + strings.Repeat("1f", 20)) {
		t.Error("expected short hash to be invalid")
	}
}

func TestValidate_MissingCIDNamesField(t *testing.T) {
	r := &UploadRecord{}
	errs := r.Validate()

	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "cid") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error naming cid, got %v", errs)
	}
}

func TestValidate_ListsEveryViolation(t *testing.T) {
	r := &UploadRecord{
		CID:             "not-a-cid",
		FileSize:        -1,
		WalletAddress:   "0xnothex",
		TransactionHash: "0xshort",
	}
	errs := r.Validate()

	if len(errs) != 4 {
		t.Errorf("expected 4 violations, got %d: %v", len(errs), errs)
	}
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	r := &UploadRecord{CID: validCIDv0}
	if errs := r.Validate(); len(errs) != 0 {
		t.Errorf("expected no violations, got %v", errs)
	}
}

func TestNormalize_LowercasesWallet(t *testing.T) {
	addr := "0x" + strings.Repeat("AB", 20)
	r := &UploadRecord{CID: "  " + validCIDv0 + " ", WalletAddress: addr}
	r.Normalize()

	if r.CID != validCIDv0 {
		t.Errorf("expected trimmed cid, got %q", r.CID)
	}
	if r.WalletAddress != strings.ToLower(addr) {
		t.Errorf("expected lowercased wallet address, got %q", r.WalletAddress)
	}
}
