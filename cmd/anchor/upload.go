package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"doc-anchor/client"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Pin a document and anchor its CID on chain",
	Long: `Upload pins the given document (PDF, PNG or JPEG) to IPFS through
the gateway, asks the wallet to sign a transaction carrying the CID and
stores the upload record.

Example:
  anchor upload ./contract.pdf`,
	Args: cobra.ExactArgs(1),
	Run:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	o := newOrchestrator()

	if err := o.ConnectWallet(ctx); err != nil {
		log.Fatalf("Failed to connect wallet: %v", err)
	}
	fmt.Printf("Connected account: %s\n", client.MaskAddress(o.Account()))

	if err := o.SelectFile(args[0]); err != nil {
		log.Fatalf("%s", o.Status())
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	result, err := o.Run(ctx, func(percent int) {
		bar.Set(percent)
	})
	if err != nil {
		log.Fatalf("%s (%v)", o.Status(), err)
	}

	fmt.Println(o.Status())
	fmt.Printf("CID:         %s\n", result.ContentID)
	fmt.Printf("View:        %s\n", gatewayLink(result.ContentID))
	fmt.Printf("Transaction: %s\n", result.TransactionHash)
	if result.Degraded {
		fmt.Println("Note: the record was not stored; keep the transaction hash.")
	}
}
