package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/config"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/rulestore"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "Manage jurisdiction rulesets",
	Long:  `List, verify, sign and import the signed jurisdiction ruleset documents.`,
}

var rulesetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rulesets",
	RunE:  runRulesetsList,
}

var rulesetsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signatures of all stored rulesets",
	Long: `Load every stored ruleset and re-check its detached signature against
the configured signing key. Exits non-zero if any document fails.`,
	RunE: runRulesetsVerify,
}

var rulesetsSignCmd = &cobra.Command{
	Use:   "sign <ruleset.json>",
	Short: "Sign a ruleset document in place",
	Long: `Compute the detached signature for a ruleset document and write the
signed document back to the same file. The document must validate first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesetsSign,
}

var rulesetsImportCmd = &cobra.Command{
	Use:   "import <ruleset.json>...",
	Short: "Import signed ruleset documents into the sqlite store",
	Long: `Verify each document's signature and insert it into the configured
sqlite store. Existing ids are never overwritten; a changed document needs a
new ruleset id.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRulesetsImport,
}

func init() {
	rulesetsCmd.AddCommand(rulesetsListCmd)
	rulesetsCmd.AddCommand(rulesetsVerifyCmd)
	rulesetsCmd.AddCommand(rulesetsSignCmd)
	rulesetsCmd.AddCommand(rulesetsImportCmd)
}

func runRulesetsList(cmd *cobra.Command, args []string) error {
	loader, closeSource, err := openLoader()
	if err != nil {
		return err
	}
	defer closeSource()

	ids, err := loader.List()
	if err != nil {
		return err
	}
	sort.Strings(ids)

	fmt.Printf("%-40s %-12s %-6s %s\n", "ID", "JURISDICTION", "YEAR", "STATUS")
	for _, id := range ids {
		env, err := loader.Peek(id)
		if err != nil {
			fmt.Printf("%-40s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Printf("%-40s %-12s %-6d %s\n", env.ID, env.Jurisdiction, env.TaxYear, env.Status)
	}
	return nil
}

func runRulesetsVerify(cmd *cobra.Command, args []string) error {
	loader, closeSource, err := openLoader()
	if err != nil {
		return err
	}
	defer closeSource()

	ids, err := loader.List()
	if err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		failures []string
	)
	var g errgroup.Group
	g.SetLimit(4)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := verifyOne(loader, id); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Strings(failures)
	for _, f := range failures {
		fmt.Printf("FAIL %s\n", f)
	}
	if len(failures) > 0 {
		return errors.RulesetSignatureInvalid(fmt.Sprintf("%d of %d documents", len(failures), len(ids)))
	}
	fmt.Printf("OK: %d documents verified\n", len(ids))
	return nil
}

// verifyOne routes a document to the right typed loader by jurisdiction
func verifyOne(loader *ruleset.Loader, id string) error {
	env, err := loader.Peek(id)
	if err != nil {
		return err
	}
	if env.Jurisdiction == "federal" {
		_, err = loader.LoadFederal(id)
		return err
	}
	_, err = loader.LoadState(id)
	return err
}

func runRulesetsSign(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Input("read ruleset document", err)
	}

	key, err := config.SigningKey()
	if err != nil {
		return err
	}
	signer := ruleset.NewSigner(key)

	var env ruleset.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Input("parse ruleset document", err)
	}

	var signed interface{}
	if env.Jurisdiction == "federal" {
		var doc ruleset.FederalRuleset
		if err := json.Unmarshal(data, &doc); err != nil {
			return errors.Input("parse federal ruleset", err)
		}
		if err := doc.Validate(); err != nil {
			return err
		}
		if err := signer.SignFederal(&doc); err != nil {
			return err
		}
		signed = &doc
	} else {
		var doc ruleset.StateRuleset
		if err := json.Unmarshal(data, &doc); err != nil {
			return errors.Input("parse state ruleset", err)
		}
		if err := doc.Validate(); err != nil {
			return err
		}
		if err := signer.SignState(&doc); err != nil {
			return err
		}
		signed = &doc
	}

	out, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return errors.Internal("marshal signed ruleset", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return errors.Store("write signed ruleset", err)
	}

	logging.Info("ruleset signed", zap.String("ruleset_id", env.ID), zap.String("path", path))
	fmt.Printf("signed %s (%s)\n", env.ID, path)
	return nil
}

func runRulesetsImport(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.Rulesets.Backend != "sqlite" {
		return errors.Config("import requires the sqlite ruleset backend", nil)
	}

	store, err := rulestore.NewSQLiteStore(cfg.Rulesets.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := config.SigningKey()
	if err != nil {
		return err
	}
	signer := ruleset.NewSigner(key)

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Input("read ruleset document", err)
		}
		var env ruleset.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return errors.Input(fmt.Sprintf("parse ruleset document %s", path), err)
		}

		// Verify before storing. Ids are write-once, so a document that
		// fails verification must never occupy its id in the store.
		if err := verifyDocument(signer, env.Jurisdiction, data); err != nil {
			return err
		}
		if err := store.Put(env.ID, env.Jurisdiction, env.TaxYear, data); err != nil {
			return err
		}
		fmt.Printf("imported %s (%s %d)\n", env.ID, env.Jurisdiction, env.TaxYear)
	}
	return nil
}

// verifyDocument validates and signature-checks a raw document before it
// touches any store, routed by jurisdiction.
func verifyDocument(signer *ruleset.Signer, jurisdiction string, data []byte) error {
	if jurisdiction == "federal" {
		var doc ruleset.FederalRuleset
		if err := json.Unmarshal(data, &doc); err != nil {
			return errors.Input("parse federal ruleset", err)
		}
		if err := signer.VerifyFederal(&doc); err != nil {
			return err
		}
		return doc.Validate()
	}
	var doc ruleset.StateRuleset
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Input("parse state ruleset", err)
	}
	if err := signer.VerifyState(&doc); err != nil {
		return err
	}
	return doc.Validate()
}
