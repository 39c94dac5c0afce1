// Withdraw command withdraws a consent through the hook pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/types"
)

var withdrawReason string

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <consent-id>",
	Short: "Withdraw a consent",
	Long: `Withdraw marks a consent as withdrawn and appends a consent record
describing the withdrawal.

Example:
  consentdb withdraw cns_0190f2 --reason "user request"`,
	Args: cobra.ExactArgs(1),
	RunE: runWithdraw,
}

func init() {
	withdrawCmd.Flags().StringVar(&withdrawReason, "reason", "", "reason for the withdrawal")
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	id := args[0]

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "withdraw:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	var updated types.Record
	err = s.Adapter().Transaction(ctx, func(ctx context.Context, tx types.Adapter) error {
		eng := pipeline.NewEngine(tx, pipeline.NewRegistry(), nil)

		change := types.Record{
			"status":   consent.StatusWithdrawn,
			"isActive": false,
		}
		if withdrawReason != "" {
			change["withdrawalReason"] = withdrawReason
		}

		var err error
		updated, err = eng.UpdateWithHooks(ctx, consent.EntityConsent,
			types.Where{types.Eq("id", id)}, change)
		if err != nil {
			return fmt.Errorf("withdraw consent: %w", err)
		}
		if updated == nil {
			return nil
		}

		_, err = tx.Create(ctx, consent.EntityConsentRecord, types.Record{
			"subjectId":  updated["subjectId"],
			"consentId":  id,
			"actionType": "consent_withdrawn",
		})
		if err != nil {
			return fmt.Errorf("create consent record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if updated == nil {
		return fmt.Errorf("consent %q not found", id)
	}
	if flagJSON {
		return printRecord(updated)
	}
	fmt.Println("Consent withdrawn:", id)
	return nil
}
