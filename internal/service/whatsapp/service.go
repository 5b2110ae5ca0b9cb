package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/commands"
	"github.com/mamadbah2/pantry/internal/service/inventory"
	client "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
)

const (
	sendTimeout  = 10 * time.Second
	failedReply  = "The pantry could not be updated right now. Please try again."
	invalidReply = "Please give an item name, e.g. /add eggs."

	// seenCapacity bounds the message ids remembered for redelivery checks.
	seenCapacity = 1024
)

// MessagingService describes the operations the HTTP layer and the
// scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger

	// Meta redelivers webhooks it considers unanswered; a message id is
	// dispatched at most once.
	mu        sync.Mutex
	seen      map[string]struct{}
	seenOrder []string
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message that carries text. Once a
// command has been dispatched its reply is best effort: a failed send is
// logged, never returned, so the webhook is acknowledged and Meta does not
// redeliver a message whose intent already ran.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				s.handleInboundMessage(ctx, msg)
			}
		}
	}
	return nil
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) {
	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return
	}

	if !s.markSeen(msg.ID) {
		s.logger.Info("skipping redelivered message", zap.String("message_id", msg.ID))
		return
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("message_id", msg.ID),
		zap.String("command", string(cmd.Type)),
		zap.String("arg", cmd.Arg))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrUnsupportedCommand):
		reply = commands.HelpText
	case errors.Is(err, inventory.ErrInvalidName):
		reply = invalidReply
	default:
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = failedReply
	}

	if err := s.send(ctx, msg.From, reply, false); err != nil {
		s.logger.Error("failed to send reply", zap.String("message_id", msg.ID), zap.String("to", msg.From), zap.Error(err))
	}
}

// markSeen records id and reports whether it was new. Messages without an
// id are always treated as new.
func (s *MetaWhatsAppService) markSeen(id string) bool {
	if id == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return false
	}
	if len(s.seenOrder) >= seenCapacity {
		delete(s.seen, s.seenOrder[0])
		s.seenOrder = s.seenOrder[1:]
	}
	s.seen[id] = struct{}{}
	s.seenOrder = append(s.seenOrder, id)
	return true
}

// SendOutbound pushes a message to an arbitrary recipient.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}
