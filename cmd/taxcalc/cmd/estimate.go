package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FelipeAlvarezM0/fiscalprovider/core/calculator"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/money"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/ruleset"
	"github.com/FelipeAlvarezM0/fiscalprovider/core/types"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/config"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/rulestore"
)

var (
	estimateFormat   string
	federalRulesetID string
	stateRulesetID   string
)

// inputBundle is the on-disk shape of one user's tax-year snapshot
type inputBundle struct {
	Profile           *types.TaxProfile        `json:"profile"`
	Incomes           []types.IncomeSource     `json:"incomes"`
	EstimatedPayments []types.EstimatedPayment `json:"estimated_payments"`
	Transactions      []types.Transaction      `json:"transactions"`
	Deductions        []types.DeductionItem    `json:"deductions"`
	Rules             []types.CategoryRule     `json:"rules"`
	Overrides         []types.UserOverride     `json:"overrides"`
}

// estimateEnvelope wraps the deterministic output with per-invocation
// metadata. The run id identifies this CLI invocation only; the output
// itself is a pure function of the bundle and rulesets.
type estimateEnvelope struct {
	RunID  string            `json:"run_id"`
	Result calculator.Output `json:"result"`
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <bundle.json>",
	Short: "Compute a tax estimate from an input bundle",
	Long: `Compute a federal and state tax estimate from a JSON input bundle.

The bundle holds the profile, income sources, transactions, deductions,
categorization rules and user overrides for one user and tax year. Rulesets
are loaded from the configured store and signature-verified before use;
pass --federal-ruleset/--state-ruleset to pin exact versions, otherwise the
store's active versions for the bundle's tax year are used.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateFormat, "format", "summary", "output format (summary, json)")
	estimateCmd.Flags().StringVar(&federalRulesetID, "federal-ruleset", "", "pin a federal ruleset id")
	estimateCmd.Flags().StringVar(&stateRulesetID, "state-ruleset", "", "pin a state ruleset id")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Input("read input bundle", err)
	}

	var bundle inputBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return errors.Input("parse input bundle", err)
	}
	if bundle.Profile == nil {
		return errors.Input("input bundle has no profile", nil)
	}

	loader, closeSource, err := openLoader()
	if err != nil {
		return err
	}
	defer closeSource()

	fedID, stID := federalRulesetID, stateRulesetID
	if fedID == "" || stID == "" {
		active, err := loader.ResolveActive(bundle.Profile.TaxYear)
		if err != nil {
			return err
		}
		if fedID == "" {
			fedID = active.FederalID
		}
		if stID == "" {
			stID = active.StateID
		}
	}

	federal, err := loader.LoadFederal(fedID)
	if err != nil {
		return err
	}
	state, err := loader.LoadState(stID)
	if err != nil {
		return err
	}

	calc := calculator.NewForState(config.Get().SupportedState)
	out := calc.Compute(calculator.Input{
		Profile:           bundle.Profile,
		Incomes:           bundle.Incomes,
		EstimatedPayments: bundle.EstimatedPayments,
		Transactions:      bundle.Transactions,
		Deductions:        bundle.Deductions,
		Rules:             bundle.Rules,
		Overrides:         bundle.Overrides,
		Federal:           federal,
		State:             state,
	})

	env := estimateEnvelope{RunID: uuid.New().String(), Result: out}
	logging.Info("estimate computed",
		zap.String("run_id", env.RunID),
		zap.String("user_id", bundle.Profile.UserID),
		zap.Int("tax_year", bundle.Profile.TaxYear),
		zap.String("status", out.EstimateStatus.String()))

	switch estimateFormat {
	case "json":
		return printJSON(env)
	case "summary":
		printSummary(env)
		return nil
	default:
		return errors.Input(fmt.Sprintf("unknown format %q", estimateFormat), nil)
	}
}

// openLoader builds a ruleset loader over the configured backend. The
// returned close func releases the backend; it is a no-op for the fs store.
func openLoader() (*ruleset.Loader, func(), error) {
	cfg := config.Get()

	key, err := config.SigningKey()
	if err != nil {
		return nil, nil, err
	}
	signer := ruleset.NewSigner(key)

	switch cfg.Rulesets.Backend {
	case "sqlite":
		store, err := rulestore.NewSQLiteStore(cfg.Rulesets.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return ruleset.NewLoader(store, signer), func() { store.Close() }, nil
	case "fs", "":
		store := rulestore.NewFSStore(cfg.Rulesets.Directory)
		return ruleset.NewLoader(store, signer), func() {}, nil
	default:
		return nil, nil, errors.Config(fmt.Sprintf("unknown ruleset backend %q", cfg.Rulesets.Backend), nil)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Internal("marshal output", err)
	}
	fmt.Println(string(data))
	return nil
}

func printSummary(env estimateEnvelope) {
	out := env.Result

	fmt.Printf("Tax Estimate (%s)\n", out.EstimateStatus)
	fmt.Println("========================================")
	if out.Watermark != "" {
		fmt.Printf("Note: %s\n\n", out.Watermark)
	}

	fmt.Printf("Scope:        %s\n", out.Scope.Status)
	fmt.Printf("Completeness: %d/100\n", out.Completeness.Score)
	fmt.Printf("Confidence:   %d/100\n\n", out.Confidence.Score)

	fmt.Printf("Gross income:       %10s\n", out.Breakdown.GrossIncome)
	fmt.Printf("Business expenses:  %10s\n", out.Breakdown.BusinessExpenses)
	fmt.Printf("Deduction (%s): %10s\n", out.Breakdown.DeductionKind, out.Breakdown.DeductionApplied)
	fmt.Printf("Federal taxable:    %10s\n", out.Breakdown.FederalTaxableIncome)

	fmt.Printf("\nFederal: %s\n", out.Federal.Status)
	printJurisdictionLine("tax", out.Federal.Tax)
	printJurisdictionLine("balance due", out.Federal.BalanceDue)

	fmt.Printf("State:   %s\n", out.State.Status)
	printJurisdictionLine("tax", out.State.Tax)
	printJurisdictionLine("balance due", out.State.BalanceDue)

	if !out.Breakdown.SelfEmploymentTax.IsZero() {
		fmt.Printf("\nSelf-employment tax: %s (range %s to %s)\n",
			out.Breakdown.SelfEmploymentTax,
			out.Breakdown.SelfEmploymentTaxLow,
			out.Breakdown.SelfEmploymentTaxHigh)
	}

	if len(out.PaymentPlan.Installments) > 0 {
		fmt.Printf("\nPayment plan (%s):\n", out.PaymentPlan.Basis)
		for _, inst := range out.PaymentPlan.Installments {
			fmt.Printf("  %d. %s  %s\n", inst.Sequence, inst.DueDate.Format("2006-01-02"), inst.Amount)
		}
	}

	if len(out.RiskFlags) > 0 {
		fmt.Println("\nRisk flags:")
		for _, f := range out.RiskFlags {
			fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Code, f.Message)
		}
	}
	if len(out.Assumptions) > 0 {
		fmt.Println("\nAssumptions:")
		for _, a := range out.Assumptions {
			fmt.Printf("  %s: %s\n", a.Code, a.Description)
		}
	}

	fmt.Printf("\nRulesets: federal=%s state=%s\n", out.RulesetIDs.Federal, out.RulesetIDs.State)
	fmt.Printf("Run:      %s\n", env.RunID)
}

func printJurisdictionLine(label string, amount *money.Money) {
	if amount == nil {
		fmt.Printf("  %-12s n/a\n", label+":")
		return
	}
	fmt.Printf("  %-12s %s\n", label+":", amount)
}
