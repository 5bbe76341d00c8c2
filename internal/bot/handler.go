package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"musicshelf/internal/music"
	"musicshelf/internal/storage"
)

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot    *tgbot.Bot
	parser music.Parser
	repo   storage.Repository
	log    logrus.FieldLogger
}

// NewHandler creates a new bot handler instance and registers the command
// and message handlers.
func NewHandler(token string, parser music.Parser, repo storage.Repository, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	b, err := tgbot.New(token)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h := &Handler{
		bot:    b,
		parser: parser,
		repo:   repo,
		log:    log,
	}

	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/recap", tgbot.MatchTypeExact, h.recapHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypeContains, h.messageHandler)

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.log.WithField("chat_id", update.Message.Chat.ID).Info("Received /start command")

	welcome := "Hi! Share a Spotify link (artist, album or track) and I'll keep note of it. " +
		"Use /recap to see what this chat shared during the last week."
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcome,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to send welcome message")
	}
}

// recapHandler builds and sends the weekly digest for the current chat.
func (h *Handler) recapHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	log := h.log.WithField("chat_id", chatID)
	log.Info("Building weekly recap")

	grouped, err := h.repo.GetLastWeekLinks(ctx, chatID)
	if err != nil {
		log.WithError(err).Error("Failed to load last week links")
		return
	}

	_, err = b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   BuildDigest(grouped),
	})
	if err != nil {
		log.WithError(err).Error("Failed to send recap")
	}
}

// messageHandler scans incoming text for streaming links and records every
// one it can resolve.
func (h *Handler) messageHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	for _, word := range strings.Fields(update.Message.Text) {
		if !h.parser.IsValidURL(word) {
			continue
		}
		h.processLink(ctx, b, update.Message, word)
	}
}

func (h *Handler) processLink(ctx context.Context, b *tgbot.Bot, msg *models.Message, rawURL string) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	userID := strconv.FormatInt(msg.From.ID, 10)
	log := h.log.WithFields(logrus.Fields{
		"chat_id": chatID,
		"user_id": userID,
		"url":     rawURL,
	})

	cleaned := h.parser.CleanURL(rawURL)

	linkType, ok := h.parser.LinkTypeOf(cleaned)
	if !ok {
		// Recognized domain, unknown entity kind (e.g. playlist). Ignore.
		log.Debug("Unrecognized link shape, skipping")
		return
	}

	if err := h.ensureUser(ctx, userID, msg.From); err != nil {
		log.WithError(err).Error("Failed to register user")
		return
	}

	duplicate, err := h.repo.IsDuplicateLink(ctx, cleaned, chatID)
	if err != nil {
		log.WithError(err).Error("Failed to check for duplicate link")
		return
	}
	if duplicate {
		log.Info("Link already shared in this chat during the last week")
		h.reply(ctx, b, msg, "This one was already shared here during the last week.")
		return
	}

	info, err := h.parser.LinkInfo(ctx, cleaned, linkType)
	if err != nil {
		log.WithError(err).Error("Failed to resolve link info")
		return
	}

	err = h.repo.SaveLink(ctx, storage.UserChatLink{
		Link:     cleaned,
		LinkType: int(linkType),
		ChatID:   chatID,
		UserID:   userID,
	})
	if err != nil {
		log.WithError(err).Error("Failed to save link")
		return
	}

	log.WithField("link_type", linkType.String()).Info("Link saved")
	h.reply(ctx, b, msg, FormatLinkReply(info))
}

// ensureUser registers the sender on their first shared link.
func (h *Handler) ensureUser(ctx context.Context, userID string, from *models.User) error {
	exists, err := h.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return h.repo.SaveUser(ctx, storage.User{
		ID:        userID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	})
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, msg *models.Message, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to send reply")
	}
}
