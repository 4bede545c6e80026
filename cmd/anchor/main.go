package main

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"doc-anchor/client"
	"doc-anchor/conf"
	"doc-anchor/wallet"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Anchor documents on IPFS and the blockchain",
	Long: `Anchor pins a document to IPFS through the gateway, records its CID
in a wallet-signed transaction and stores the resulting metadata.

The wallet is never held by this process: signing happens in the
configured wallet provider and every transaction can be declined there.`,
	PersistentPreRun: initializeConfig,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
}

func initializeConfig(cmd *cobra.Command, args []string) {
	if err := conf.InitConfig(configFile); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
}

// newOrchestrator wires the workflow against the configured gateway and
// wallet endpoints.
func newOrchestrator() *client.Orchestrator {
	provider := wallet.NewRPCProvider(conf.Cfg.Client.WalletRpcURL)
	connector := wallet.NewConnector(provider)

	pinClient := client.NewPinClient(conf.Cfg.Client.ServerURL,
		time.Duration(conf.Cfg.Client.UploadTimeoutSeconds)*time.Second)
	recordClient := client.NewRecordClient(conf.Cfg.Client.ServerURL)

	return client.NewOrchestrator(pinClient, recordClient, connector,
		conf.Cfg.Pinning.MaxFileSizeBytes())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
