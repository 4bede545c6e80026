package client

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"doc-anchor/model"
	"doc-anchor/wallet"
)

// State upload workflow state
type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateUploading
	StateAwaitingSignature
	StateConfirming
	StatePersisting
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file_selected"
	case StateUploading:
		return "uploading"
	case StateAwaitingSignature:
		return "awaiting_signature"
	case StateConfirming:
		return "confirming"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Workflow status messages shown to the user.
const (
	MsgConnectWallet     = "Please connect your wallet."
	MsgUploadFile        = "Please upload a file."
	MsgUploadingIPFS     = "Uploading to IPFS..."
	MsgSavingBlockchain  = "File uploaded with Pinata. Saving transaction to Blockchain..."
	MsgConfirmingTx      = "Transaction confirmed. Saving to database..."
	MsgSuccess           = "Transaction and Database Save Successful!"
	MsgTxSuccessDBFailed = "Transaction successful, but failed to save to database."
	MsgTxFailed          = "Transaction failed. Please try again."
	MsgIPFSFailed        = "IPFS upload failed. Please try again."
	MsgTxCancelled       = "Transaction cancelled by user."
	MsgInsufficientFunds = "Insufficient funds for transaction. Please fund your wallet."
	MsgError             = "An error occurred. Please try again."
	MsgInvalidFileType   = "Invalid file type. Please upload a PDF, PNG, or JPEG file."
	MsgFileTooLarge      = "File size exceeds the 100 MB limit."
)

var acceptedFileTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// Result outcome of a completed workflow run
type Result struct {
	ContentID       string
	TransactionHash string
	DecodedPayload  string
	Record          *model.UploadRecord
	Degraded        bool
}

// Orchestrator drives a document through the full anchoring workflow:
// pin the file, anchor its CID in a wallet-signed transaction, persist
// the record. Not safe for concurrent use.
type Orchestrator struct {
	pinClient    *PinClient
	recordClient *RecordClient
	connector    *wallet.Connector
	signer       *wallet.Signer

	maxFileSize int64

	state  State
	status string
	file   *UploadFile
}

// NewOrchestrator create workflow orchestrator
func NewOrchestrator(pinClient *PinClient, recordClient *RecordClient, connector *wallet.Connector, maxFileSize int64) *Orchestrator {
	return &Orchestrator{
		pinClient:    pinClient,
		recordClient: recordClient,
		connector:    connector,
		maxFileSize:  maxFileSize,
		state:        StateIdle,
	}
}

// State current workflow state
func (o *Orchestrator) State() State {
	return o.state
}

// Status last user-facing status message
func (o *Orchestrator) Status() string {
	return o.status
}

// Account the connected wallet address, empty when disconnected
func (o *Orchestrator) Account() string {
	if o.signer == nil {
		return ""
	}
	return o.signer.Address()
}

// ConnectWallet establishes the wallet session.
func (o *Orchestrator) ConnectWallet(ctx context.Context) error {
	signer, err := o.connector.Connect(ctx)
	if err != nil {
		o.status = err.Error()
		return err
	}
	o.signer = signer
	o.status = ""
	return nil
}

// Disconnect clears the wallet session and staged file.
func (o *Orchestrator) Disconnect() {
	o.signer = nil
	o.file = nil
	o.state = StateIdle
	o.status = ""
}

// SelectFile stages a document for anchoring. Unsupported types and
// oversize files are refused with a status message, leaving the
// workflow where it was.
func (o *Orchestrator) SelectFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		o.status = MsgError
		return fmt.Errorf("stat file: %w", err)
	}
	if o.maxFileSize > 0 && info.Size() > o.maxFileSize {
		o.status = MsgFileTooLarge
		return errors.New(MsgFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		o.status = MsgError
		return fmt.Errorf("read file: %w", err)
	}

	contentType := sniffContentType(content)
	if !acceptedFileTypes[contentType] {
		o.status = MsgInvalidFileType
		return errors.New(MsgInvalidFileType)
	}

	o.file = &UploadFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	}
	o.state = StateFileSelected
	o.status = ""
	return nil
}

// Run executes the full workflow for the staged file. On persistence
// failure after a confirmed transaction the run still succeeds, with
// Result.Degraded set and the transaction hash preserved.
func (o *Orchestrator) Run(ctx context.Context, onProgress func(percent int)) (*Result, error) {
	if o.signer == nil {
		o.status = MsgConnectWallet
		return nil, errors.New(MsgConnectWallet)
	}
	if o.file == nil {
		o.status = MsgUploadFile
		return nil, errors.New(MsgUploadFile)
	}

	file := o.file

	o.state = StateUploading
	o.status = MsgUploadingIPFS

	pinned, err := o.pinClient.Upload(ctx, file, onProgress)
	if err != nil {
		o.fail(MsgIPFSFailed)
		return nil, err
	}

	o.state = StateAwaitingSignature
	o.status = MsgSavingBlockchain

	tx, err := o.signer.SendTransaction(ctx, o.signer.Address(), []byte(pinned.ContentID))
	if err != nil {
		o.fail(transactionMessage(err))
		return nil, err
	}

	o.state = StateConfirming

	receipt, err := tx.Wait(ctx)
	if err != nil {
		o.fail(transactionMessage(err))
		return nil, err
	}
	if receipt.Status != 1 {
		o.fail(MsgTxFailed)
		return nil, errors.New(MsgTxFailed)
	}

	o.state = StatePersisting
	o.status = MsgConfirmingTx

	result := &Result{
		ContentID:       pinned.ContentID,
		TransactionHash: tx.Hash,
		DecodedPayload:  pinned.ContentID,
	}

	record, err := o.recordClient.Create(ctx, &model.UploadRecord{
		CID:             pinned.ContentID,
		FileName:        file.Name,
		FileType:        file.ContentType,
		FileSize:        int64(len(file.Content)),
		WalletAddress:   o.signer.Address(),
		TransactionHash: tx.Hash,
	})
	if err != nil {
		result.Degraded = true
		o.state = StateDone
		o.status = MsgTxSuccessDBFailed
		o.file = nil
		return result, nil
	}

	result.Record = record
	o.state = StateDone
	o.status = MsgSuccess
	o.file = nil
	return result, nil
}

// fail records a terminal error status; the staged file is kept so the
// run can be retried.
func (o *Orchestrator) fail(message string) {
	o.state = StateError
	o.status = message
}

// Reset returns an errored or finished workflow to a runnable state.
func (o *Orchestrator) Reset() {
	if o.file != nil {
		o.state = StateFileSelected
	} else {
		o.state = StateIdle
	}
	o.status = ""
}

func transactionMessage(err error) string {
	switch {
	case errors.Is(err, wallet.ErrUserRejected):
		return MsgTxCancelled
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return MsgInsufficientFunds
	default:
		return MsgError
	}
}

// sniffContentType detects the MIME type from content, trimming the
// charset parameter http.DetectContentType appends to text types.
func sniffContentType(content []byte) string {
	contentType := http.DetectContentType(content)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType
}

// DecodePayload converts hex calldata back to its UTF-8 text, dropping
// NUL padding.
func DecodePayload(hexData string) (string, error) {
	hexData = strings.TrimPrefix(hexData, "0x")
	raw, err := hex.DecodeString(hexData)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	return strings.ReplaceAll(string(raw), "\x00", ""), nil
}

// MaskAddress shortens an address for display, 0x9f8...5432 style.
func MaskAddress(address string) string {
	if address == "" {
		return ""
	}
	if len(address) < 10 {
		return address
	}
	return address[:5] + "..." + address[len(address)-4:]
}
