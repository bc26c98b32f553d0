package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cardiactrader/internal/apperrors"
)

// HeartPuzzle is the oracle's answer for one stock: the hidden heart count
// that drives the true value, and the puzzle image shown to the player.
type HeartPuzzle struct {
	HeartCount int
	ImageData  string
}

// PuzzleFetcher is the single contract the market engine consumes from the
// external puzzle oracle.
type PuzzleFetcher interface {
	FetchPuzzle(ctx context.Context) (*HeartPuzzle, error)
}

// HeartService wraps the heart-puzzle API. Every call is bounded by the
// configured timeout; failures surface as ErrExternalServiceUnavailable and
// the fallback decision is left to the caller.
type HeartService struct {
	baseURL string
	client  *http.Client
}

// NewHeartService creates a new heart API client
func NewHeartService(baseURL string, timeout time.Duration) *HeartService {
	return &HeartService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type heartAPIResponse struct {
	Question string `json:"question"`
	Solution int    `json:"solution"`
}

// FetchPuzzle fetches one puzzle as JSON with a base64 encoded image.
func (hs *HeartService) FetchPuzzle(ctx context.Context) (*HeartPuzzle, error) {
	url := hs.baseURL + "/api.php?out=json&base64=yes"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building heart api request: %v", apperrors.ErrExternalServiceUnavailable, err)
	}

	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling heart api: %v", apperrors.ErrExternalServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: heart api returned status %d", apperrors.ErrExternalServiceUnavailable, resp.StatusCode)
	}

	var body heartAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding heart api response: %v", apperrors.ErrExternalServiceUnavailable, err)
	}

	return &HeartPuzzle{
		HeartCount: body.Solution,
		ImageData:  toDataURI(body.Question),
	}, nil
}

// toDataURI wraps a raw base64 image so the frontend can render it directly.
func toDataURI(base64Image string) string {
	if base64Image == "" {
		return ""
	}
	if strings.HasPrefix(base64Image, "data:image") {
		return base64Image
	}
	return "data:image/png;base64," + strings.TrimSpace(base64Image)
}
