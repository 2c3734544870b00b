package closer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/sol"
	"github.com/rentclaim/rentclaim/internal/validate"
)

// Executor runs one planned batch transaction to completion.
type Executor interface {
	Execute(ctx context.Context, plan *TransactionPlan, signer Signer) models.BatchResult
}

// StatsSink receives the consolidated outcome of a close operation once any
// batch has settled. A sink failure never affects the on-chain outcome.
type StatsSink interface {
	RecordCloseOutcome(ctx context.Context, record models.CloseRecord) error
}

// Settings are the business parameters of the close pipeline.
type Settings struct {
	FeeRecipient       string
	ServiceFeePercent  int
	ReferralFeePercent int
	MaxBatchSize       int
}

// Orchestrator drives the full close pipeline: batch, settle, build, execute
// sequentially, and report the aggregate to the stats sink.
type Orchestrator struct {
	client   sol.RPCClient
	executor Executor
	sink     StatsSink
	settings Settings
}

// NewOrchestrator creates the close pipeline orchestrator. The sink may be
// nil, in which case outcomes are not recorded.
func NewOrchestrator(client sol.RPCClient, executor Executor, sink StatsSink, settings Settings) *Orchestrator {
	slog.Info("close orchestrator created",
		"feeRecipient", settings.FeeRecipient,
		"serviceFeePercent", settings.ServiceFeePercent,
		"referralFeePercent", settings.ReferralFeePercent,
		"maxBatchSize", settings.MaxBatchSize,
	)
	return &Orchestrator{
		client:   client,
		executor: executor,
		sink:     sink,
		settings: settings,
	}
}

// referralTarget is the resolved referral destination for one close operation.
type referralTarget struct {
	recipient  *sol.PublicKey // nil when no referral share is owed
	address    string         // credited referrer address, empty otherwise
	redirected bool           // share goes to the fee recipient instead
	warning    string
}

// CloseAccounts closes the given accounts on behalf of the signing wallet,
// splitting the reclaimed rent between the wallet, the platform fee recipient
// and an optional referrer. Batches execute strictly in sequence; the first
// failed batch stops the operation and the summary reports what settled.
func (o *Orchestrator) CloseAccounts(
	ctx context.Context,
	accounts []models.CloseableAccount,
	signer Signer,
	referrerCandidate string,
) (*models.CloseSummary, error) {
	if signer == nil {
		return nil, config.ErrNoSigner
	}

	feeRecipientAddr := validate.Sanitize(o.settings.FeeRecipient)
	if !validate.IsAddress(feeRecipientAddr) {
		return nil, fmt.Errorf("%w: fee recipient %q is not a valid address", config.ErrInvalidConfig, o.settings.FeeRecipient)
	}
	feeRecipient, err := sol.PublicKeyFromBase58(feeRecipientAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: fee recipient: %s", config.ErrInvalidConfig, err)
	}

	if o.settings.ServiceFeePercent < 0 || o.settings.ReferralFeePercent < 0 ||
		o.settings.ServiceFeePercent+o.settings.ReferralFeePercent > 100 {
		return nil, fmt.Errorf("%w: fee %d%% + referral %d%%",
			config.ErrInvalidFeeRates, o.settings.ServiceFeePercent, o.settings.ReferralFeePercent)
	}

	wallet := signer.PublicKey().ToBase58()
	summary := &models.CloseSummary{
		Wallet:     wallet,
		Signatures: []string{},
		Success:    true,
	}

	if len(accounts) == 0 {
		slog.Info("no closeable accounts, nothing to do", "wallet", wallet)
		return summary, nil
	}

	start := time.Now()

	referral := o.resolveReferral(ctx, referrerCandidate, wallet, &feeRecipient)
	summary.Warning = referral.warning

	batches, err := SplitBatches(accounts, o.settings.MaxBatchSize)
	if err != nil {
		return nil, err
	}

	slog.Info("close operation started",
		"wallet", wallet,
		"accounts", len(accounts),
		"batches", len(batches),
		"referrer", referral.address,
		"referralRedirected", referral.redirected,
	)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			summary.Success = false
			summary.FailureReason = fmt.Sprintf("cancelled before batch %d: %s", i, err)
			slog.Warn("close operation cancelled", "wallet", wallet, "batchIndex", i, "error", err)
			break
		}

		var total uint64
		for _, acc := range batch {
			total += acc.ReclaimableLamports
		}

		split, err := ComputeSplit(total, o.settings.ServiceFeePercent, o.settings.ReferralFeePercent, referral.recipient != nil)
		if err != nil {
			return nil, err
		}

		plan, err := BuildPlan(i, batch, signer.PublicKey(), feeRecipient, split, referral.recipient, referral.redirected)
		if err != nil {
			summary.Success = false
			summary.FailureReason = fmt.Sprintf("build batch %d: %s", i, err)
			slog.Error("batch plan build failed", "wallet", wallet, "batchIndex", i, "error", err)
			break
		}

		result := o.executor.Execute(ctx, plan, signer)
		summary.BatchResults = append(summary.BatchResults, result)

		if !result.OK {
			summary.Success = false
			summary.FailureReason = result.ErrorReason
			break
		}

		summary.TotalAccountsClosed += result.AccountsClosed
		summary.TotalReclaimedLamports += result.ReclaimedLamports
		summary.TotalFeeLamports += result.FeePaid
		summary.TotalReferralLamports += result.ReferralPaid
		summary.Signatures = append(summary.Signatures, result.Signature)
	}

	summary.NetLamports = summary.TotalReclaimedLamports - summary.TotalFeeLamports - summary.TotalReferralLamports

	slog.Info("close operation finished",
		"wallet", wallet,
		"success", summary.Success,
		"accountsClosed", summary.TotalAccountsClosed,
		"reclaimed", summary.TotalReclaimedLamports,
		"fee", summary.TotalFeeLamports,
		"referral", summary.TotalReferralLamports,
		"net", summary.NetLamports,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	o.recordOutcome(ctx, summary, referral)

	return summary, nil
}

// resolveReferral sanitizes and validates a referrer candidate and decides
// where the referral share goes. Self-referrals are silently inert. An
// invalid address drops the share with a warning. A referrer with no funded
// on-chain account has the share redirected to the fee recipient, so the
// settlement amounts stay identical either way.
func (o *Orchestrator) resolveReferral(ctx context.Context, candidate, wallet string, feeRecipient *sol.PublicKey) referralTarget {
	if o.settings.ReferralFeePercent == 0 {
		return referralTarget{}
	}

	clean := validate.Sanitize(candidate)
	if clean == "" {
		return referralTarget{}
	}

	if clean == wallet {
		// Self-referral grants nothing; not worth a warning.
		slog.Debug("self-referral ignored", "wallet", wallet)
		return referralTarget{}
	}

	if !validate.IsAddress(clean) {
		slog.Warn("invalid referrer address, closing without referral", "referrer", clean)
		return referralTarget{warning: fmt.Sprintf("invalid referrer address %q, no referral paid", clean)}
	}

	exists, _, err := o.client.GetAccountInfo(ctx, clean)
	if err != nil || !exists {
		slog.Warn("referrer account not funded on-chain, referral share redirected to fee recipient",
			"referrer", clean,
			"error", err,
		)
		return referralTarget{
			recipient:  feeRecipient,
			redirected: true,
			warning:    fmt.Sprintf("referrer %s has no funded account, referral share redirected to platform", clean),
		}
	}

	recipient, err := sol.PublicKeyFromBase58(clean)
	if err != nil {
		slog.Warn("invalid referrer address, closing without referral", "referrer", clean, "error", err)
		return referralTarget{warning: fmt.Sprintf("invalid referrer address %q, no referral paid", clean)}
	}

	return referralTarget{
		recipient: &recipient,
		address:   clean,
	}
}

// recordOutcome reports settled batches to the stats sink. Failures here are
// logged and swallowed: the chain already moved, bookkeeping must not flip
// the result.
func (o *Orchestrator) recordOutcome(ctx context.Context, summary *models.CloseSummary, referral referralTarget) {
	if o.sink == nil || summary.TotalAccountsClosed == 0 {
		return
	}

	record := models.CloseRecord{
		Wallet:            summary.Wallet,
		Signatures:        summary.Signatures,
		BatchCount:        len(summary.Signatures),
		AccountsClosed:    summary.TotalAccountsClosed,
		ReclaimedLamports: summary.TotalReclaimedLamports,
		FeeLamports:       summary.TotalFeeLamports,
		ReferralLamports:  summary.TotalReferralLamports,
		NetLamports:       summary.NetLamports,
		Referrer:          referral.address,
	}
	if len(summary.Signatures) > 0 {
		record.Signature = summary.Signatures[0]
	}

	if err := o.sink.RecordCloseOutcome(ctx, record); err != nil {
		slog.Error("failed to record close outcome",
			"wallet", summary.Wallet,
			"accountsClosed", summary.TotalAccountsClosed,
			"error", err,
		)
	}
}
