package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"funding-platform/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const welcomeText = "Welcome 👋\n\n" +
	"You are registered on the platform.\n" +
	"Use /balance to check your token balance."

const helpText = "Commands:\n" +
	"/start — register and open the app\n" +
	"/app — open the app\n" +
	"/balance — check your token balance\n" +
	"/help — show this list"

// BotServiceImpl implements ports.BotService. It interprets relayed chat
// commands and replies through the Notifier capability. All failures stay
// internal: the transport layer acknowledges every delivery regardless, so
// the upstream relay never redelivers, and problems are observable only via
// logs.
type BotServiceImpl struct {
	identitySvc ports.IdentityService
	balanceRepo ports.BalanceRepository
	notifier    ports.Notifier
	cooldown    ports.CooldownStore
	window      time.Duration
	webAppURL   string
	log         zerolog.Logger
}

// NewBotService creates a new BotServiceImpl. cooldown may be nil to disable
// burst throttling.
func NewBotService(
	identitySvc ports.IdentityService,
	balanceRepo ports.BalanceRepository,
	notifier ports.Notifier,
	cooldown ports.CooldownStore,
	window time.Duration,
	webAppURL string,
	log zerolog.Logger,
) *BotServiceImpl {
	return &BotServiceImpl{
		identitySvc: identitySvc,
		balanceRepo: balanceRepo,
		notifier:    notifier,
		cooldown:    cooldown,
		window:      window,
		webAppURL:   webAppURL,
		log:         log,
	}
}

// HandleUpdate processes one relayed update. Unknown commands and
// non-message updates are ignored.
func (s *BotServiceImpl) HandleUpdate(ctx context.Context, update ports.RelayUpdate) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	telegramID := strconv.FormatInt(msg.From.ID, 10)
	text := strings.TrimSpace(msg.Text)

	// Match the command first. Only recognized commands spend the cooldown
	// window; stray text must not lock the identity out of a real command.
	var cmd func(context.Context) error
	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/app"):
		cmd = func(ctx context.Context) error { return s.handleStart(ctx, msg.Chat.ID, telegramID) }
	case strings.HasPrefix(text, "/help"):
		cmd = func(ctx context.Context) error { return s.notify(ctx, msg.Chat.ID, helpText, nil) }
	case strings.HasPrefix(text, "/balance"):
		cmd = func(ctx context.Context) error { return s.handleBalance(ctx, msg.Chat.ID, telegramID) }
	default:
		return nil
	}

	if s.cooldown != nil && s.window > 0 {
		allowed, err := s.cooldown.Touch(ctx, telegramID, s.window)
		if err != nil {
			// Degraded mode: a broken throttle must not block commands.
			s.log.Warn().Err(err).Str("telegram_id", telegramID).Msg("cooldown check failed, allowing command")
		} else if !allowed {
			s.log.Debug().Str("telegram_id", telegramID).Msg("command dropped by cooldown")
			return nil
		}
	}

	return cmd(ctx)
}

func (s *BotServiceImpl) handleStart(ctx context.Context, chatID int64, telegramID string) error {
	if _, err := s.identitySvc.EnsureUser(ctx, telegramID); err != nil {
		s.log.Error().Err(err).Str("telegram_id", telegramID).Msg("ensure user on /start failed")
		return err
	}

	var keyboard [][]ports.Button
	if s.webAppURL != "" {
		keyboard = [][]ports.Button{{{Text: "Open app", WebAppURL: s.webAppURL}}}
	}
	return s.notify(ctx, chatID, welcomeText, keyboard)
}

func (s *BotServiceImpl) handleBalance(ctx context.Context, chatID int64, telegramID string) error {
	user, err := s.identitySvc.EnsureUser(ctx, telegramID)
	if err != nil {
		s.log.Error().Err(err).Str("telegram_id", telegramID).Msg("ensure user on /balance failed")
		return err
	}

	amount := decimal.Zero
	balance, err := s.balanceRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("balance lookup failed")
		return err
	}
	if balance != nil {
		amount = balance.Amount
	}

	return s.notify(ctx, chatID, fmt.Sprintf("Your balance: %s tokens", amount.String()), nil)
}

func (s *BotServiceImpl) notify(ctx context.Context, chatID int64, text string, keyboard [][]ports.Button) error {
	if err := s.notifier.Notify(ctx, chatID, text, keyboard); err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("relay notify failed")
		return err
	}
	return nil
}
