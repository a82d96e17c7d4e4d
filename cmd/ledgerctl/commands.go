package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iurnickita/bizledger/internal/ledgerclient"
	"github.com/iurnickita/bizledger/internal/model"
	"github.com/iurnickita/bizledger/internal/money"
	"github.com/iurnickita/bizledger/internal/token"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user>",
	Short: "Issue an access token signed with TOKEN_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		tokenString, err := token.BuildJWTString(secret, args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tokenString)
		return nil
	},
}

// Пересчёт балансов

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Rebuild balances from documents",
}

var recalcCustomerCmd = &cobra.Command{
	Use:   "customer <id>...",
	Short: "Recalculate one or more customers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if len(args) == 1 {
			snapshot, err := client.RecalculateCustomer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, snapshot)
		}
		snapshots, err := client.RecalculateCustomers(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshots)
	},
}

var recalcSupplierCmd = &cobra.Command{
	Use:   "supplier <id>",
	Short: "Recalculate a supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := newClient().RecalculateSupplier(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshot)
	},
}

// Платежи

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Record payments",
}

var payBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Spread one payment over the oldest outstanding documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		supplierID, _ := cmd.Flags().GetString("supplier")
		payment, err := paymentFromFlags(cmd)
		if err != nil {
			return err
		}

		var result model.BulkAllocation
		switch {
		case customerID != "" && supplierID == "":
			result, err = newClient().AllocateBulkPayment(cmd.Context(), customerID, payment)
		case supplierID != "" && customerID == "":
			result, err = newClient().AllocateBulkSupplierPayment(cmd.Context(), supplierID, payment)
		default:
			return errors.New("exactly one of --customer and --supplier is required")
		}
		if err != nil {
			return err
		}
		if err := printJSON(cmd, result); err != nil {
			return err
		}
		if result.Failure != nil {
			fmt.Fprintf(os.Stderr, "allocation stopped at %s: %s\n", result.Failure.InvoiceID, result.Failure.Error)
		}
		return nil
	},
}

func paymentFromFlags(cmd *cobra.Command) (ledgerclient.Payment, error) {
	amountText, _ := cmd.Flags().GetString("amount")
	mode, _ := cmd.Flags().GetString("mode")
	notes, _ := cmd.Flags().GetString("notes")
	dateText, _ := cmd.Flags().GetString("date")

	amount, err := money.Parse(amountText)
	if err != nil {
		return ledgerclient.Payment{}, fmt.Errorf("amount: %w", err)
	}
	payment := ledgerclient.Payment{Amount: amount, Mode: mode, Notes: notes}
	if dateText != "" {
		date, err := time.Parse(time.DateOnly, dateText)
		if err != nil {
			return ledgerclient.Payment{}, fmt.Errorf("date: %w", err)
		}
		payment.Date = date
	}
	return payment, nil
}

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Manage recorded payments",
}

var paymentDeleteCmd = &cobra.Command{
	Use:   "delete <documentId> <paymentId>",
	Short: "Delete a payment and recalculate its owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if purchase, _ := cmd.Flags().GetBool("purchase"); purchase {
			p, err := newClient().DeletePurchasePayment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}
		inv, err := newClient().DeletePayment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, inv)
	},
}

// Документы

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage invoices",
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <customerId> <invoiceId>",
	Short: "Delete an invoice and recalculate the customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := newClient().DeleteInvoice(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshot)
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show balances without changing anything",
}

var ledgerCustomerCmd = &cobra.Command{
	Use:   "customer <id>",
	Args:  cobra.ExactArgs(1),
	Short: "Show a customer's invoices and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := newClient().CustomerLedger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshot)
	},
}

var ledgerSupplierCmd = &cobra.Command{
	Use:   "supplier <id>",
	Args:  cobra.ExactArgs(1),
	Short: "Show a supplier's purchases and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := newClient().SupplierLedger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshot)
	},
}

func init() {
	tokenCmd.Flags().String("secret", os.Getenv("TOKEN_SECRET"), "signing secret")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")

	recalcCmd.AddCommand(recalcCustomerCmd, recalcSupplierCmd)

	payBulkCmd.Flags().String("customer", "", "customer id")
	payBulkCmd.Flags().String("supplier", "", "supplier id")
	payBulkCmd.Flags().String("amount", "", "amount, at most 2 decimal places")
	payBulkCmd.Flags().String("mode", model.PaymentModeCash, "payment mode")
	payBulkCmd.Flags().String("notes", "", "notes copied to every allocated payment")
	payBulkCmd.Flags().String("date", "", "payment date YYYY-MM-DD, default today")
	_ = payBulkCmd.MarkFlagRequired("amount")
	payCmd.AddCommand(payBulkCmd)

	paymentDeleteCmd.Flags().Bool("purchase", false, "the document is a purchase")
	paymentCmd.AddCommand(paymentDeleteCmd)

	invoiceCmd.AddCommand(invoiceDeleteCmd)
	ledgerCmd.AddCommand(ledgerCustomerCmd, ledgerSupplierCmd)
}
