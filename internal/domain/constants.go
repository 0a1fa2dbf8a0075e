package domain

const CurrencyINR = "INR"

const MandateFrequencyMonthly = "monthly"

// Persisted outcome of a donation attempt.
const (
	DonationStatusPending   = "PENDING"
	DonationStatusSucceeded = "SUCCEEDED"
	DonationStatusFailed    = "FAILED"
	DonationStatusAbandoned = "ABANDONED"
)
