package errors

const (
	PaymentValidationFailed = 800
	PaymentLimitExceeded    = 801
	PaymentNotPending       = 802
	PaymentExpired          = 803
	PaymentBusy             = 804
	TransactionNotFound     = 810
	TransactionReverted     = 811
	TransactionAlreadyUsed  = 812
	InvalidSignature        = 813
	VerificationUnavailable = 814
	InvalidTransition       = 820
	StaleTransition         = 821
	MerchantInactive        = 830
)
