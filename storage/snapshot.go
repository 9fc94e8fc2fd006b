package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SnapshotPublisher writes immutable JSON snapshots of a tournament's leaderboard
// plus a "latest.json" pointer copy.
type SnapshotPublisher struct {
	uploader FileUploader
	prefix   string
}

func NewSnapshotPublisher(uploader FileUploader, prefix string) *SnapshotPublisher {
	if prefix == "" {
		prefix = "standings"
	}
	return &SnapshotPublisher{uploader: uploader, prefix: prefix}
}

// Publish uploads payload under <prefix>/<tournamentID>/<uuid>.json and refreshes latest.json.
func (p *SnapshotPublisher) Publish(ctx context.Context, tournamentID int64, payload any) (*UploadResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%d/%s.json", p.prefix, tournamentID, uuid.NewString())
	result, err := p.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	latestKey := fmt.Sprintf("%s/%d/latest.json", p.prefix, tournamentID)
	if _, err := p.uploader.Upload(ctx, latestKey, "application/json", bytes.NewReader(body)); err != nil {
		return result, err
	}
	return result, nil
}
