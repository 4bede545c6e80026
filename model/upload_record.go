package model

import (
	"regexp"
	"strings"
	"time"
)

// UploadRecord upload record metadata model. The record is a convenience
// index over what is already anchored on the pinning service and the
// chain; it is created once and never modified afterwards.
type UploadRecord struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	CID             string `gorm:"uniqueIndex;type:varchar(128);not null" json:"cid"`                          // IPFS content identifier
	FileName        string `gorm:"type:varchar(255)" json:"fileName,omitempty"`                                // original file name
	FileSize        int64  `json:"fileSize,omitempty"`                                                         // file size in bytes
	FileType        string `gorm:"type:varchar(100)" json:"fileType,omitempty"`                                // MIME type
	WalletAddress   string `gorm:"index:idx_wallet_created,priority:1;type:varchar(42)" json:"walletAddress,omitempty"` // lowercased on write
	TransactionHash string `gorm:"index;type:varchar(66)" json:"transactionHash,omitempty"`                    // anchoring transaction

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_wallet_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specify table name
func (UploadRecord) TableName() string {
	return "tb_upload_record"
}

var (
	// CIDv0: Qm + 44 base58 characters
	cidV0Regex = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
	// CIDv1: starts with 'b' followed by base32 characters
	cidV1Regex = regexp.MustCompile(`^b[a-z2-7]{58,}$`)

	addressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	txHashRegex  = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// IsValidCID reports whether cid matches CIDv0 or CIDv1 textual form
func IsValidCID(cid string) bool {
	return cidV0Regex.MatchString(cid) || cidV1Regex.MatchString(cid)
}

// IsValidWalletAddress reports whether addr is a 0x-prefixed 40-hex address
func IsValidWalletAddress(addr string) bool {
	return addressRegex.MatchString(addr)
}

// IsValidTransactionHash reports whether h is a 0x-prefixed 64-hex hash
func IsValidTransactionHash(h string) bool {
	return txHashRegex.MatchString(h)
}

// Normalize trims fields and lowercases the wallet address.
func (r *UploadRecord) Normalize() {
	r.CID = strings.TrimSpace(r.CID)
	r.FileName = strings.TrimSpace(r.FileName)
	r.FileType = strings.TrimSpace(r.FileType)
	r.WalletAddress = strings.ToLower(strings.TrimSpace(r.WalletAddress))
	r.TransactionHash = strings.TrimSpace(r.TransactionHash)
}

// Validate returns every violated field constraint. An empty slice
// means the record is storable.
func (r *UploadRecord) Validate() []string {
	var errs []string

	if r.CID == "" {
		errs = append(errs, "cid is required")
	} else if !IsValidCID(r.CID) {
		errs = append(errs, "cid is not a valid IPFS CID (CIDv0 or CIDv1)")
	}
	if r.FileSize < 0 {
		errs = append(errs, "fileSize must be a non-negative number")
	}
	if r.WalletAddress != "" && !IsValidWalletAddress(r.WalletAddress) {
		errs = append(errs, "walletAddress is not a valid address")
	}
	if r.TransactionHash != "" && !IsValidTransactionHash(r.TransactionHash) {
		errs = append(errs, "transactionHash is not a valid transaction hash")
	}

	return errs
}
