package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

// ErrUnsupportedCommand indicates the message is not a pantry command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the commands the bot understands.
const HelpText = "Pantry commands:\n/add <item> - add one\n/remove <item> - remove one\n/list [search] - show the pantry"

// Dispatcher executes parsed chat commands against the inventory.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory inventory.Intents
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(intents inventory.Intents, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{inventory: intents, logger: logger}
}

// HandleCommand runs the intent behind cmd and renders the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.String("arg", cmd.Arg))

	switch cmd.Type {
	case models.CommandAdd:
		snapshot, err := s.inventory.AddOne(ctx, cmd.Arg)
		if err != nil {
			return "", err
		}
		return quantityReply(snapshot, cmd.Arg), nil
	case models.CommandRemove:
		snapshot, err := s.inventory.RemoveOne(ctx, cmd.Arg)
		if err != nil {
			return "", err
		}
		return quantityReply(snapshot, cmd.Arg), nil
	case models.CommandList:
		snapshot, err := s.inventory.Refresh(ctx)
		if err != nil {
			return "", err
		}
		return FormatSnapshot(snapshot.Filter(cmd.Arg)), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func quantityReply(snapshot models.Snapshot, name string) string {
	name = strings.TrimSpace(name)
	item, ok := snapshot.Find(name)
	if !ok {
		return fmt.Sprintf("%s is no longer in the pantry.", models.Item{Name: name}.DisplayName())
	}
	return fmt.Sprintf("%s: %d", item.DisplayName(), item.Quantity)
}

// FormatSnapshot renders items one per line as "Name: quantity".
func FormatSnapshot(snapshot models.Snapshot) string {
	if len(snapshot) == 0 {
		return "The pantry is empty."
	}

	var sb strings.Builder
	for i, item := range snapshot {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %d", item.DisplayName(), item.Quantity)
	}
	return sb.String()
}
