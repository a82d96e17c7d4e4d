package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/iurnickita/bizledger/internal/ledgerclient"
)

var (
	serverAddr string
	userToken  string
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator tool for the invoice and payment ledger",
	Long: `ledgerctl talks to a running ledger service. It issues access tokens,
records bulk payments, removes payments and invoices entered by mistake and
rebuilds customer or supplier balances from their documents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", envOr("LEDGER_ADDRESS", "http://localhost:8080"), "ledger service URL")
	rootCmd.PersistentFlags().StringVar(&userToken, "token", os.Getenv("LEDGER_TOKEN"), "access token")

	rootCmd.AddCommand(tokenCmd, recalcCmd, payCmd, paymentCmd, invoiceCmd, ledgerCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() ledgerclient.Client {
	return ledgerclient.NewClient(serverAddr, userToken)
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
