package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultVerifierURL = "https://smsverifierapi-production.up.railway.app/api/verify-deposit"

type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var depositClient = &http.Client{Timeout: 10 * time.Second}

// VerifyDeposit sends the SMS body and reference to the external verification
// API. Returns true if the deposit is confirmed, false otherwise. The engine
// core never sees this flow; crediting happens in the controller.
func VerifyDeposit(body, reference string) (bool, error) {
	url := os.Getenv("SMS_VERIFIER_URL")
	if url == "" {
		url = defaultVerifierURL
	}

	payload := map[string]string{
		"body":      body,
		"reference": reference,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := depositClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %v", err)
	}

	var verifyResp VerifyResponse
	if err := json.Unmarshal(bodyBytes, &verifyResp); err != nil {
		return false, fmt.Errorf("failed to parse response JSON: %v", err)
	}

	return verifyResp.Status == "success", nil
}
