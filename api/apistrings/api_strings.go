package apistrings

const (
	/// Auth Related Strings
	Unauthorized       = "unauthorized request"
	InvalidBearerToken = "invalid token, expects bearer token"
	InvalidAdminKey    = "invalid admin key"
	MerchantNotFound   = "merchant does not exist"
	MerchantInactive   = "merchant account is not active"

	/// Core Functionality Error
	ServerError = "a server error occurred, please try again later"

	/// Payment Creation Strings
	InvalidPaymentInput  = "check 'amount', 'sourceChain', 'destinationChain' or 'recipient' keys, invalid request"
	InvalidAmount        = "amount must be a positive USDC value with at most 6 decimals"
	CurrencyNotSupported = "entered currency is not supported, only USDC is accepted"
	ChainNotSupported    = "entered chain is not supported"
	InvalidAddress       = "invalid wallet address"
	FeeExceedsAmount     = "amount is too small to cover fees"
	LimitExceeded        = "merchant transaction limit exceeded"
	PaymentCreated       = "Payment Created Successfully"

	/// Payment Processing Strings
	InvalidProcessInput    = "check 'senderAddress', 'transactionHash' or 'signature' keys, invalid request"
	PaymentNotFound        = "payment does not exist"
	PaymentNotPending      = "payment is not pending"
	PaymentExpired         = "payment has expired"
	PaymentBusy            = "payment is already being processed, please retry shortly"
	InvalidTransactionHash = "invalid transaction hash"
	InvalidSignature       = "signature does not match sender address"
	TransactionNotFound    = "transaction not found or not yet confirmed, please retry later"
	TransactionReverted    = "transaction reverted on chain"
	TransactionUsed        = "transaction has already been used for another payment"
	VerificationFailed     = "unable to verify transaction, please retry later"
	PaymentProcessed       = "Payment Processed Successfully"

	/// Payment Query Strings
	InvalidListQuery = "check 'status', 'chain', 'limit' or 'offset' query, invalid request"
	PaymentFetched   = "Payment Fetched Successfully"
	PaymentsFetched  = "Payments Fetched Successfully"
	EventsFetched    = "Payment Events Fetched Successfully"

	/// Operator Strings
	InvalidStatusInput = "check 'status' key, invalid request"
	UnknownStatus      = "entered status is not a payment status"
	InvalidTransition  = "status change is not allowed for this payment"
	StaleTransition    = "payment status changed concurrently, please reload and retry"
	StatusUpdated      = "Payment Status Updated Successfully"
)
