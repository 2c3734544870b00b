package closer

import (
	"fmt"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
)

// ComputeSplit divides a reclaimed lamport total between the platform fee, an
// optional referral share, and the user's net payout. Percentages use floor
// division, so any rounding remainder stays with the user. Without a credited
// referrer the referral share is zero and the fee keeps its own rate; the
// referral portion is not folded into the fee.
//
// The parts always sum exactly: FeeLamports + ReferralLamports + NetLamports == TotalLamports.
func ComputeSplit(totalLamports uint64, feeRatePercent, referralRatePercent int, referrerPresent bool) (models.SettlementSplit, error) {
	if feeRatePercent < 0 || feeRatePercent > 100 || referralRatePercent < 0 || referralRatePercent > 100 {
		return models.SettlementSplit{}, fmt.Errorf("%w: fee %d%%, referral %d%%",
			config.ErrInvalidFeeRates, feeRatePercent, referralRatePercent)
	}
	if feeRatePercent+referralRatePercent > 100 {
		return models.SettlementSplit{}, fmt.Errorf("%w: fee %d%% + referral %d%% exceeds 100%%",
			config.ErrInvalidFeeRates, feeRatePercent, referralRatePercent)
	}

	fee := totalLamports * uint64(feeRatePercent) / 100

	var referral uint64
	if referrerPresent {
		referral = totalLamports * uint64(referralRatePercent) / 100
	}

	return models.SettlementSplit{
		TotalLamports:    totalLamports,
		FeeLamports:      fee,
		ReferralLamports: referral,
		NetLamports:      totalLamports - fee - referral,
	}, nil
}
