package models

// CloseableAccount is one empty SPL token account whose rent deposit can be
// reclaimed by closing it. Produced by the scanner, consumed by the close
// pipeline; never persisted.
type CloseableAccount struct {
	Address             string `json:"address"`
	Mint                string `json:"mint"`
	ReclaimableLamports uint64 `json:"reclaimableLamports"`
	OwnerProgram        string `json:"ownerProgram"`
}

// SettlementSplit is the three-way division of a reclaimed lamport total.
// FeeLamports + ReferralLamports + NetLamports == TotalLamports always.
type SettlementSplit struct {
	TotalLamports    uint64 `json:"totalLamports"`
	FeeLamports      uint64 `json:"feeLamports"`
	ReferralLamports uint64 `json:"referralLamports"`
	NetLamports      uint64 `json:"netLamports"`
}

// BatchResult is the outcome of executing one batch transaction.
// On failure AccountsClosed, FeePaid and ReferralPaid are zero;
// ReclaimedLamports always carries the batch total for reporting.
type BatchResult struct {
	BatchIndex        int    `json:"batchIndex"`
	AccountsClosed    int    `json:"accountsClosed"`
	ReclaimedLamports uint64 `json:"reclaimedLamports"`
	FeePaid           uint64 `json:"feePaid"`
	ReferralPaid      uint64 `json:"referralPaid"`
	Signature         string `json:"signature,omitempty"`
	Slot              uint64 `json:"slot,omitempty"`
	OK                bool   `json:"ok"`
	ErrorReason       string `json:"errorReason,omitempty"`
}

// CloseSummary aggregates all batches of one close invocation.
type CloseSummary struct {
	Wallet                 string        `json:"wallet"`
	TotalAccountsClosed    int           `json:"totalAccountsClosed"`
	TotalReclaimedLamports uint64        `json:"totalReclaimedLamports"`
	TotalFeeLamports       uint64        `json:"totalFeeLamports"`
	TotalReferralLamports  uint64        `json:"totalReferralLamports"`
	NetLamports            uint64        `json:"netLamports"`
	Signatures             []string      `json:"signatures"`
	BatchResults           []BatchResult `json:"batchResults"`
	Success                bool          `json:"success"`
	Warning                string        `json:"warning,omitempty"`
	FailureReason          string        `json:"failureReason,omitempty"`
}

// CloseRecord is the consolidated stats-sink input for one settled close
// operation. Referrer is empty unless the referral was actually credited.
type CloseRecord struct {
	Wallet            string   `json:"wallet"`
	Signature         string   `json:"signature"`
	Signatures        []string `json:"signatures"`
	BatchCount        int      `json:"batchCount"`
	AccountsClosed    int      `json:"accountsClosed"`
	ReclaimedLamports uint64   `json:"reclaimedLamports"`
	FeeLamports       uint64   `json:"feeLamports"`
	ReferralLamports  uint64   `json:"referralLamports"`
	NetLamports       uint64   `json:"netLamports"`
	Referrer          string   `json:"referrer,omitempty"`
}

// CloseTransaction is a persisted close operation (one row per settled
// orchestrator invocation).
type CloseTransaction struct {
	ID                int64  `json:"id"`
	Signature         string `json:"signature"`
	Wallet            string `json:"wallet"`
	AccountsClosed    int    `json:"accountsClosed"`
	ReclaimedLamports uint64 `json:"reclaimedLamports"`
	FeeLamports       uint64 `json:"feeLamports"`
	ReferralLamports  uint64 `json:"referralLamports"`
	NetLamports       uint64 `json:"netLamports"`
	Referrer          string `json:"referrer,omitempty"`
	BatchCount        int    `json:"batchCount"`
	CreatedAt         string `json:"createdAt"`
}

// UserStats is the accumulated per-wallet aggregate.
type UserStats struct {
	Wallet                 string `json:"wallet"`
	TotalAccountsClosed    int64  `json:"totalAccountsClosed"`
	TotalLamportsReclaimed uint64 `json:"totalLamportsReclaimed"`
	TotalFeesPaid          uint64 `json:"totalFeesPaid"`
	TotalNetReceived       uint64 `json:"totalNetReceived"`
	TransactionCount       int64  `json:"transactionCount"`
	ReferralLamports       uint64 `json:"referralLamports"`
	ReferralCount          int64  `json:"referralCount"`
	FirstTransactionAt     string `json:"firstTransactionAt,omitempty"`
	LastTransactionAt      string `json:"lastTransactionAt,omitempty"`
}

// GlobalStats is the site-wide aggregate (single row).
type GlobalStats struct {
	TotalAccountsClosed    int64  `json:"totalAccountsClosed"`
	TotalLamportsReclaimed uint64 `json:"totalLamportsReclaimed"`
	TotalFeesPaid          uint64 `json:"totalFeesPaid"`
	TotalTransactions      int64  `json:"totalTransactions"`
	TotalUsers             int64  `json:"totalUsers"`
	UpdatedAt              string `json:"updatedAt,omitempty"`
}

// StatsDelta is one settled operation's contribution to an aggregate.
type StatsDelta struct {
	AccountsClosed    int
	ReclaimedLamports uint64
	FeeLamports       uint64
	NetLamports       uint64
}

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Data interface{} `json:"data,omitempty"`
	Meta *APIMeta    `json:"meta,omitempty"`
}

// APIMeta contains pagination and execution metadata.
type APIMeta struct {
	Page          int   `json:"page,omitempty"`
	PageSize      int   `json:"pageSize,omitempty"`
	Total         int64 `json:"total,omitempty"`
	ExecutionTime int64 `json:"executionTime,omitempty"`
}

// APIError is the standard error response.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error code and message.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
