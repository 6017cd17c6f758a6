package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lottoworks/storesync-worker/internal/cloud"
	"github.com/lottoworks/storesync-worker/internal/models"
)

// GameSource resolves game catalog entries used to enrich pack pushes.
type GameSource interface {
	GetByID(ctx context.Context, gameID string) (*models.Game, error)
}

// PackPusher routes each pack on its terminal status: DEPLETED goes to the
// deplete endpoint, RETURNED to the return endpoint. A missing or unknown
// reason is a validation failure and is never coerced to a fallback value.
type PackPusher struct {
	games  GameSource
	client CloudClient
	logger *zap.Logger
}

func NewPackPusher(games GameSource, client CloudClient, logger *zap.Logger) *PackPusher {
	return &PackPusher{games: games, client: client, logger: logger}
}

func (p *PackPusher) Push(ctx context.Context, items []models.QueueItem) []PushResult {
	results := make([]PushResult, 0, len(items))
	for _, item := range items {
		results = append(results, p.pushOne(ctx, item))
	}
	return results
}

func (p *PackPusher) pushOne(ctx context.Context, item models.QueueItem) PushResult {
	status, ok := payloadString(item.Payload, "status")
	if !ok {
		return failed(item.ID, missingFieldsError("pack", []string{"status"}))
	}

	switch status {
	case models.PackStatusDepleted:
		return p.pushDeplete(ctx, item)
	case models.PackStatusReturned:
		return p.pushReturn(ctx, item)
	default:
		return failed(item.ID, fmt.Sprintf("pack payload has unsupported status %q", status))
	}
}

func (p *PackPusher) pushDeplete(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	closingSerial, ok := payloadString(item.Payload, "closing_serial")
	if !ok {
		missing = append(missing, "closing_serial")
	}
	depletedAt, ok := payloadString(item.Payload, "depleted_at")
	if !ok {
		missing = append(missing, "depleted_at")
	}
	reason, reasonErr := requiredReason(item.Payload, "depletion_reason", models.ValidDepletionReason)
	if reasonErr != "" {
		return failed(item.ID, reasonErr)
	}
	if len(missing) > 0 {
		return failed(item.ID, missingFieldsError("pack deplete", missing))
	}

	req := cloud.PackDepleteRequest{
		StoreID:         item.StoreID,
		PackID:          item.EntityID,
		GameCode:        p.gameCode(ctx, item.Payload),
		ClosingSerial:   closingSerial,
		DepletedAt:      depletedAt,
		DepletionReason: reason,
		DepletedBy:      payloadOptString(item.Payload, "depleted_by"),
		Notes:           payloadOptString(item.Payload, "notes"),
	}

	result, err := p.client.DepletePack(ctx, req)
	return outcome(item.ID, result, err)
}

func (p *PackPusher) pushReturn(ctx context.Context, item models.QueueItem) PushResult {
	var missing []string

	returnedAt, ok := payloadString(item.Payload, "returned_at")
	if !ok {
		missing = append(missing, "returned_at")
	}
	reason, reasonErr := requiredReason(item.Payload, "return_reason", models.ValidReturnReason)
	if reasonErr != "" {
		return failed(item.ID, reasonErr)
	}
	if len(missing) > 0 {
		return failed(item.ID, missingFieldsError("pack return", missing))
	}

	req := cloud.PackReturnRequest{
		StoreID:      item.StoreID,
		PackID:       item.EntityID,
		GameCode:     p.gameCode(ctx, item.Payload),
		ReturnedAt:   returnedAt,
		ReturnReason: reason,
		ReturnedBy:   payloadOptString(item.Payload, "returned_by"),
		Notes:        payloadOptString(item.Payload, "notes"),
	}

	result, err := p.client.ReturnPack(ctx, req)
	return outcome(item.ID, result, err)
}

// requiredReason validates a reason field: it must be present, non-null,
// and a member of the enum. The exact payload value is what gets sent.
func requiredReason(payload models.JSON, key string, valid func(string) bool) (string, string) {
	v, present := payload[key]
	if !present || v == nil {
		return "", fmt.Sprintf("pack payload has null %s", key)
	}
	s, ok := v.(string)
	if !ok || !valid(s) {
		return "", fmt.Sprintf("pack payload has invalid %s: %v", key, v)
	}
	return s, ""
}

// gameCode enriches the request with the catalog game code when the payload
// references a resolvable game. Enrichment is best-effort.
func (p *PackPusher) gameCode(ctx context.Context, payload models.JSON) *string {
	gameID, ok := payloadString(payload, "game_id")
	if !ok {
		return nil
	}
	game, err := p.games.GetByID(ctx, gameID)
	if err != nil {
		p.logger.Debug("game lookup failed, pushing pack without game code",
			zap.String("game_id", gameID), zap.Error(err))
		return nil
	}
	return &game.GameCode
}
