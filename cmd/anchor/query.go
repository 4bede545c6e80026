package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"doc-anchor/client"
	"doc-anchor/conf"
	"doc-anchor/model"
	"doc-anchor/tool"
	"doc-anchor/wallet"
)

var (
	listWallet string
	listLimit  int
	listSkip   int
)

func init() {
	listCmd.Flags().StringVar(&listWallet, "wallet", "", "Filter by wallet address")
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Page size (1-100)")
	listCmd.Flags().IntVar(&listSkip, "skip", 0, "Records to skip")
}

var getCmd = &cobra.Command{
	Use:   "get <cid>",
	Short: "Show the upload record anchored under a CID",
	Args:  cobra.ExactArgs(1),
	Run:   runGet,
}

func runGet(cmd *cobra.Command, args []string) {
	cid := args[0]
	if !model.IsValidCID(cid) {
		log.Fatalf("%s is not a valid IPFS CID", cid)
	}

	record, err := client.NewRecordClient(conf.Cfg.Client.ServerURL).GetByCID(context.Background(), cid)
	if err != nil {
		log.Fatalf("Failed to get record: %v", err)
	}

	printRecord(record)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List anchored documents, newest first",
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	rc := client.NewRecordClient(conf.Cfg.Client.ServerURL)

	var (
		page *client.RecordPage
		err  error
	)
	if listWallet != "" {
		page, err = rc.ListByWallet(ctx, listWallet, listLimit, listSkip)
	} else {
		page, err = rc.List(ctx, listLimit, listSkip)
	}
	if err != nil {
		log.Fatalf("Failed to list records: %v", err)
	}

	for _, record := range page.Records {
		fmt.Printf("%s  %-30s  %s\n", record.CreatedAt.Format("2006-01-02 15:04"),
			record.FileName, record.CID)
	}
	fmt.Printf("%d of %d records (skip %d)", len(page.Records), page.Total, page.Skip)
	if page.HasMore {
		fmt.Printf(", more available")
	}
	fmt.Println()
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check gateway health and wallet connectivity",
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	body, err := tool.GetUrl(conf.Cfg.Client.ServerURL + "/health")
	if err != nil {
		fmt.Printf("Gateway:  unreachable (%v)\n", err)
	} else {
		fmt.Printf("Gateway:  %s (database %s, uptime %.0fs)\n",
			gjson.Get(body, "status").String(),
			gjson.Get(body, "database").String(),
			gjson.Get(body, "uptime").Float())
	}

	connector := wallet.NewConnector(wallet.NewRPCProvider(conf.Cfg.Client.WalletRpcURL))
	if connector.IsConnected(ctx) {
		fmt.Println("Wallet:   connected")
	} else {
		fmt.Println("Wallet:   not connected")
	}
}

func gatewayLink(cid string) string {
	return strings.TrimRight(conf.Cfg.Client.GatewayURL, "/") + "/" + cid
}

func printRecord(record *model.UploadRecord) {
	fmt.Printf("CID:         %s\n", record.CID)
	fmt.Printf("View:        %s\n", gatewayLink(record.CID))
	if record.FileName != "" {
		fmt.Printf("File:        %s (%s, %d bytes)\n", record.FileName, record.FileType, record.FileSize)
	}
	if record.WalletAddress != "" {
		fmt.Printf("Wallet:      %s\n", record.WalletAddress)
	}
	if record.TransactionHash != "" {
		fmt.Printf("Transaction: %s\n", record.TransactionHash)
	}
	fmt.Printf("Created:     %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
}
