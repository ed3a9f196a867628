package service

import (
	"fmt"
	"regexp"

	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func ValidateTxHash(txHash string) error {
	if !txHashPattern.MatchString(txHash) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTransactionHash, txHash)
	}
	return nil
}

// VerifySenderSignature checks signature is a personal_sign of txHash by sender.
func VerifySenderSignature(sender, txHash, signature string) error {
	if !common.IsHexAddress(sender) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, sender)
	}

	raw, err := hexutil.Decode(signature)
	if err != nil || len(raw) != crypto.SignatureLength {
		return domain.ErrInvalidSignature
	}
	sig := make([]byte, len(raw))
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(txHash)), sig)
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(sender) {
		return domain.ErrInvalidSignature
	}
	return nil
}
