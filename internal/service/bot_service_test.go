package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"funding-platform/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard [][]ports.Button
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, chatID int64, text string, keyboard [][]ports.Button) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMessage, len(n.sent))
	copy(out, n.sent)
	return out
}

type fakeCooldown struct {
	allowed bool
	err     error
	touched []string
}

func (c *fakeCooldown) Touch(ctx context.Context, identity string, window time.Duration) (bool, error) {
	c.touched = append(c.touched, identity)
	if c.err != nil {
		return false, c.err
	}
	return c.allowed, nil
}

type botTestDeps struct {
	userRepo    *fakeUserRepo
	balanceRepo *fakeBalanceRepo
	notifier    *fakeNotifier
	cooldown    *fakeCooldown
}

func setupBot(t *testing.T, cooldown *fakeCooldown) (*BotServiceImpl, *botTestDeps) {
	t.Helper()
	deps := &botTestDeps{
		userRepo:    newFakeUserRepo(),
		balanceRepo: newFakeBalanceRepo(),
		notifier:    &fakeNotifier{},
		cooldown:    cooldown,
	}
	identitySvc := NewIdentityService(deps.userRepo, deps.balanceRepo, zerolog.Nop())

	var store ports.CooldownStore
	if cooldown != nil {
		store = cooldown
	}
	svc := NewBotService(identitySvc, deps.balanceRepo, deps.notifier, store, 10*time.Second, "https://app.example.org", zerolog.Nop())
	return svc, deps
}

func relayCommand(telegramID, chatID int64, text string) ports.RelayUpdate {
	msg := &ports.RelayMessage{Text: text}
	msg.From.ID = telegramID
	msg.Chat.ID = chatID
	return ports.RelayUpdate{Message: msg}
}

func TestHandleUpdate_StartRegistersAndWelcomes(t *testing.T) {
	svc, deps := setupBot(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "/start")))

	user, err := deps.userRepo.GetByTelegramID(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, user, "user must be registered on /start")

	msgs := deps.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].chatID)
	assert.Equal(t, welcomeText, msgs[0].text)
	require.Len(t, msgs[0].keyboard, 1)
	require.Len(t, msgs[0].keyboard[0], 1)
	assert.Equal(t, "Open app", msgs[0].keyboard[0][0].Text)
	assert.Equal(t, "https://app.example.org", msgs[0].keyboard[0][0].WebAppURL)
}

func TestHandleUpdate_BalanceFormatsAmount(t *testing.T) {
	svc, deps := setupBot(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "/start")))
	user, err := deps.userRepo.GetByTelegramID(ctx, "42")
	require.NoError(t, err)
	deps.balanceRepo.set(user.ID, "12.5")

	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "/balance")))

	msgs := deps.notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Your balance: 12.5 tokens", msgs[1].text)
	assert.Nil(t, msgs[1].keyboard)
}

func TestHandleUpdate_BalanceRegistersUnknownUser(t *testing.T) {
	svc, deps := setupBot(t, nil)

	require.NoError(t, svc.HandleUpdate(context.Background(), relayCommand(77, 77, "/balance")))

	msgs := deps.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Your balance: 0 tokens", msgs[0].text)
}

func TestHandleUpdate_Help(t *testing.T) {
	svc, deps := setupBot(t, nil)

	require.NoError(t, svc.HandleUpdate(context.Background(), relayCommand(42, 42, "/help")))

	msgs := deps.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, helpText, msgs[0].text)
}

func TestHandleUpdate_IgnoresUnknownAndNonMessage(t *testing.T) {
	svc, deps := setupBot(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.HandleUpdate(ctx, ports.RelayUpdate{}))
	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "hello there")))
	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "/unknown")))

	assert.Empty(t, deps.notifier.messages())
}

func TestHandleUpdate_CooldownDropsSilently(t *testing.T) {
	cooldown := &fakeCooldown{allowed: false}
	svc, deps := setupBot(t, cooldown)

	require.NoError(t, svc.HandleUpdate(context.Background(), relayCommand(42, 42, "/balance")))

	assert.Equal(t, []string{"42"}, cooldown.touched)
	assert.Empty(t, deps.notifier.messages())
}

func TestHandleUpdate_StrayTextDoesNotSpendCooldown(t *testing.T) {
	cooldown := &fakeCooldown{allowed: true}
	svc, deps := setupBot(t, cooldown)
	ctx := context.Background()

	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "hello there")))
	assert.Empty(t, cooldown.touched, "stray text must not touch the cooldown")

	require.NoError(t, svc.HandleUpdate(ctx, relayCommand(42, 42, "/balance")))

	assert.Equal(t, []string{"42"}, cooldown.touched)
	require.Len(t, deps.notifier.messages(), 1)
	assert.Equal(t, "Your balance: 0 tokens", deps.notifier.messages()[0].text)
}

func TestHandleUpdate_CooldownFailureAllowsCommand(t *testing.T) {
	cooldown := &fakeCooldown{err: errors.New("redis down")}
	svc, deps := setupBot(t, cooldown)

	require.NoError(t, svc.HandleUpdate(context.Background(), relayCommand(42, 42, "/help")))

	require.Len(t, deps.notifier.messages(), 1)
}

func TestHandleUpdate_NotifyFailureSurfaces(t *testing.T) {
	svc, deps := setupBot(t, nil)
	deps.notifier.err = errors.New("relay unreachable")

	err := svc.HandleUpdate(context.Background(), relayCommand(42, 42, "/help"))
	require.Error(t, err)
}
