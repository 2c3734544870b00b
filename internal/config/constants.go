package config

import "time"

// Well-known Solana program IDs.
const (
	SystemProgramID        = "11111111111111111111111111111111"
	TokenProgramID         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID     = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	ComputeBudgetProgramID = "ComputeBudget111111111111111111111111111111"
)

// Transaction sizing.
const (
	// Hard ceiling of a serialized legacy transaction.
	SOLMaxTxSize = 1232

	// Compute unit budget: fixed overhead plus a per-close allowance.
	// With the batch ceiling of 20 this stays under the 400k units a
	// single transaction may request.
	ComputeUnitBase     = 30_000
	ComputeUnitPerClose = 18_000

	// MaxBatchSizeCeiling bounds configured batch sizes; beyond ~20 closes
	// a transaction risks the size and compute ceilings above.
	MaxBatchSizeCeiling = 20

	// Rent-exempt deposit of a standard SPL token account.
	TokenAccountRentLamports = 2_039_280
)

// Confirmation polling.
const (
	ConfirmationTimeout      = 60 * time.Second
	ConfirmationPollInterval = 2 * time.Second
)

// RPC endpoints and limits.
const (
	SolanaMainnetRPCURL = "https://api.mainnet-beta.solana.com"
	SolanaDevnetRPCURL  = "https://api.devnet.solana.com"
	RateLimitSolanaRPC  = 10 // requests per second
	RPCTimeout          = 30 * time.Second
)

// Server.
const (
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 120 * time.Second
	ServerIdleTimeout  = 120 * time.Second
	ShutdownTimeout    = 30 * time.Second
)

// Logging.
const (
	LogMaxAgeDays = 30
)

// API pagination and leaderboard bounds.
const (
	DefaultPageSize         = 20
	MaxPageSize             = 100
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)
