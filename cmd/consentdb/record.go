// Record command creates a consent through the hook pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/types"
)

var (
	recordSubject   string
	recordDomain    string
	recordPurposes  []string
	recordPolicy    string
	recordMetadata  string
	recordIPAddress string
	recordUserAgent string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a consent",
	Long: `Record creates a consent for a subject against a domain, together
with an append-only consent record describing the action.

Example:
  consentdb record --subject sub_123 --domain dom_456 --purpose analytics --purpose marketing
  consentdb record --subject sub_123 --domain dom_456 --metadata '{"source":"banner"}'`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordSubject, "subject", "", "subject ID (created when empty)")
	recordCmd.Flags().StringVar(&recordDomain, "domain", "", "domain ID (required)")
	recordCmd.Flags().StringArrayVar(&recordPurposes, "purpose", nil, "purpose code or ID (repeatable)")
	recordCmd.Flags().StringVar(&recordPolicy, "policy", "", "policy ID the consent was given under")
	recordCmd.Flags().StringVar(&recordMetadata, "metadata", "", "extra metadata as a JSON object")
	recordCmd.Flags().StringVar(&recordIPAddress, "ip", "", "IP address of the subject")
	recordCmd.Flags().StringVar(&recordUserAgent, "user-agent", "", "user agent of the subject")
	recordCmd.MarkFlagRequired("domain")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "record:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	var metadata map[string]any
	if recordMetadata != "" {
		if err := json.Unmarshal([]byte(recordMetadata), &metadata); err != nil {
			return fmt.Errorf("invalid --metadata JSON: %w", err)
		}
	}

	// All three writes land atomically, or not at all.
	var created types.Record
	err = s.Adapter().Transaction(ctx, func(ctx context.Context, tx types.Adapter) error {
		eng := pipeline.NewEngine(tx, pipeline.NewRegistry(), nil)

		subjectID := recordSubject
		if subjectID == "" {
			subject, err := tx.Create(ctx, consent.EntitySubject, types.Record{
				"lastIpAddress": recordIPAddress,
			})
			if err != nil {
				return fmt.Errorf("create subject: %w", err)
			}
			subjectID = subject["id"].(string)
		}

		data := types.Record{
			"subjectId":  subjectID,
			"domainId":   recordDomain,
			"purposeIds": recordPurposes,
		}
		if recordPolicy != "" {
			data["policyId"] = recordPolicy
		}
		if metadata != nil {
			data["metadata"] = metadata
		}
		if recordIPAddress != "" {
			data["ipAddress"] = recordIPAddress
		}
		if recordUserAgent != "" {
			data["userAgent"] = recordUserAgent
		}

		created, err = eng.CreateWithHooks(ctx, consent.EntityConsent, data)
		if err != nil {
			return fmt.Errorf("create consent: %w", err)
		}
		if created == nil {
			// A before-hook vetoed the consent; nothing to record.
			return nil
		}

		_, err = tx.Create(ctx, consent.EntityConsentRecord, types.Record{
			"subjectId":  subjectID,
			"consentId":  created["id"],
			"actionType": "consent_given",
		})
		if err != nil {
			return fmt.Errorf("create consent record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created == nil {
		fmt.Println("Consent not recorded (vetoed by hook)")
		return nil
	}
	if flagJSON {
		return printRecord(created)
	}
	fmt.Println("Consent recorded:", created["id"])
	return nil
}
