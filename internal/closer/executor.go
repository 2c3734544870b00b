package closer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
	"github.com/rentclaim/rentclaim/internal/sol"
)

// BatchExecutor signs, broadcasts and confirms one batch transaction at a time.
type BatchExecutor struct {
	client sol.RPCClient
}

// NewBatchExecutor creates an executor over the given RPC client.
func NewBatchExecutor(client sol.RPCClient) *BatchExecutor {
	return &BatchExecutor{client: client}
}

// Execute runs one planned batch end to end: fetch a fresh blockhash, compile
// and sign the transaction, broadcast it, and wait for confirmation. The
// returned result always carries the batch's lamport total; the closed-count
// and paid fields are only populated once the transaction confirmed.
func (e *BatchExecutor) Execute(ctx context.Context, plan *TransactionPlan, signer Signer) models.BatchResult {
	result := models.BatchResult{
		BatchIndex:        plan.BatchIndex,
		ReclaimedLamports: plan.Split.TotalLamports,
	}

	fail := func(stage string, err error) models.BatchResult {
		result.OK = false
		result.ErrorReason = fmt.Sprintf("%s: %s", stage, err)
		slog.Error("batch execution failed",
			"batchIndex", plan.BatchIndex,
			"stage", stage,
			"error", err,
		)
		return result
	}

	blockhash, _, err := e.client.GetLatestBlockhash(ctx)
	if err != nil {
		return fail("get blockhash", err)
	}

	msg, err := sol.CompileMessage(plan.FeePayer, plan.Instructions, blockhash)
	if err != nil {
		return fail("compile message", err)
	}

	msgBytes, err := sol.SerializeMessage(msg)
	if err != nil {
		return fail("serialize message", err)
	}

	sig, err := signer.SignMessage(ctx, msgBytes)
	if err != nil {
		return fail("sign", err)
	}

	tx, err := sol.AttachSignatures(msg, []sol.Signature{sig})
	if err != nil {
		return fail("attach signatures", err)
	}

	txBytes, err := sol.SerializeTransaction(tx)
	if err != nil {
		return fail("serialize transaction", err)
	}

	if len(txBytes) > config.SOLMaxTxSize {
		return fail("size check", fmt.Errorf("%w: %d bytes (max %d)",
			config.ErrTxTooLarge, len(txBytes), config.SOLMaxTxSize))
	}

	slog.Info("broadcasting close batch",
		"batchIndex", plan.BatchIndex,
		"accounts", len(plan.Accounts),
		"lamports", plan.Split.TotalLamports,
		"txSize", len(txBytes),
	)

	txBase64 := base64.StdEncoding.EncodeToString(txBytes)
	signature, err := e.client.SendTransaction(ctx, txBase64)
	if err != nil {
		return fail("broadcast", err)
	}
	if signature == "" {
		// Fall back to the locally computed transaction ID.
		signature = sig.ToBase58()
	}
	result.Signature = signature

	slot, err := sol.WaitForConfirmation(ctx, e.client, signature)
	if err != nil {
		return fail("confirmation", err)
	}

	result.OK = true
	result.Slot = slot
	result.AccountsClosed = len(plan.Accounts)
	if plan.ReferralRedirected {
		// The referral share went to the fee recipient instead.
		result.FeePaid = plan.Split.FeeLamports + plan.Split.ReferralLamports
		result.ReferralPaid = 0
	} else {
		result.FeePaid = plan.Split.FeeLamports
		result.ReferralPaid = plan.Split.ReferralLamports
	}

	slog.Info("close batch confirmed",
		"batchIndex", plan.BatchIndex,
		"signature", signature,
		"slot", slot,
		"accountsClosed", result.AccountsClosed,
		"reclaimed", result.ReclaimedLamports,
	)

	return result
}
