package attestation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Swyp/Swyp-Backend/providers"
	"github.com/Swyp/Swyp-Backend/services/monitoring/logging"
)

var (
	// ErrAttestationPending means the burn is known but not yet signed, or unknown so far.
	ErrAttestationPending = errors.New("attestation not yet available")
)

const statusComplete = "complete"

type Attestation struct {
	MessageHash string `json:"-"`
	Attestation string `json:"attestation"`
	Status      string `json:"status"`
}

type IrisProvider struct {
	providers.BaseProvider
}

func NewIrisProvider(baseURL string, logger *logging.Logger) *IrisProvider {
	return &IrisProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.Iris,
			BaseURL: strings.TrimRight(baseURL, "/"),
			Client: &http.Client{
				Timeout: 15 * time.Second,
			},
			Logger: logger,
		},
	}
}

// GetAttestation returns ErrAttestationPending until the attestation service
// has signed the message. Any other error is transient.
func (p *IrisProvider) GetAttestation(ctx context.Context, messageHash string) (*Attestation, error) {
	url := fmt.Sprintf("%s/attestations/%s", p.BaseURL, messageHash)

	resp, err := p.MakeRequest(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("attestation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read attestation response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrAttestationPending
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("attestation service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var a Attestation
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("failed to decode attestation response: %w", err)
	}

	if a.Attestation == "" || strings.EqualFold(a.Attestation, "PENDING") {
		return nil, ErrAttestationPending
	}
	if a.Status != "" && a.Status != statusComplete {
		return nil, ErrAttestationPending
	}

	a.MessageHash = messageHash
	return &a, nil
}
