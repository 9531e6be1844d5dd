package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/facturadom/gestion-api/internal/application/ports"
	"github.com/facturadom/gestion-api/pkg/logger"
)

var _ ports.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier envía los avisos operativos como POST JSON a un webhook
// (Slack, n8n, un endpoint propio). Un webhook caído solo deja un log de
// error: el negocio ya confirmó y no se ve afectado.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

// NewWebhookNotifier construye el notificador. Timeout corto: el aviso es
// best-effort y no debe retener goroutines.
func NewWebhookNotifier(url string, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NotifyDescuadre avisa de un cierre de caja con descuadre.
func (n *WebhookNotifier) NotifyDescuadre(ctx context.Context, ev ports.DescuadreEvent) {
	if err := n.post(ctx, webhookPayload{Event: "caja.descuadre", Data: ev}); err != nil {
		n.log.Error().Err(err).
			Str("session_id", ev.SessionID).
			Str("clasificacion", ev.Clasificacion).
			Msg("no se pudo notificar descuadre")
		return
	}
	n.log.Info().
		Str("session_id", ev.SessionID).
		Str("discrepancy", ev.Discrepancy.String()).
		Msg("descuadre notificado")
}

// NotifySequenceLow avisa de una secuencia NCF por agotarse.
func (n *WebhookNotifier) NotifySequenceLow(ctx context.Context, ev ports.SequenceLowEvent) {
	if err := n.post(ctx, webhookPayload{Event: "ncf.secuencia_baja", Data: ev}); err != nil {
		n.log.Error().Err(err).
			Str("sequence_id", ev.SequenceID).
			Int64("remaining", ev.Remaining).
			Msg("no se pudo notificar secuencia baja")
		return
	}
	n.log.Warn().
		Str("sequence_id", ev.SequenceID).
		Str("ncf_type", ev.NCFType).
		Int64("remaining", ev.Remaining).
		Msg("secuencia NCF por agotarse")
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondió %d", resp.StatusCode)
	}
	return nil
}
