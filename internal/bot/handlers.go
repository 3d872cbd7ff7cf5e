// Package bot implements the Telegram storefront surface: menus, catalog
// browsing, quantity steppers, checkout and payment flows.
package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/cart"
	"github.com/m3rciful/shopbot/internal/catalog"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/orders"
	"github.com/m3rciful/shopbot/internal/payments"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/users"
	"log/slog"
)

// StateAwaitingAddress marks a user typing their delivery address.
const StateAwaitingAddress state.State = "awaiting_address"

// Options carries storefront behaviour knobs.
type Options struct {
	// Channel is the @username of the channel users must join before
	// shopping. Empty disables the gate.
	Channel string
	// PageSize bounds how many product messages one catalog page sends.
	PageSize int
	// RequireSubscription toggles the channel gate without dropping the
	// configured channel.
	RequireSubscription bool
}

// Handlers owns all Telegram-facing storefront logic.
type Handlers struct {
	opts     Options
	users    *users.Service
	catalog  *catalog.Service
	carts    *cart.Manager
	orders   *orders.Manager
	payments *payments.Reconciler
	sessions *session.Cache
	fsm      state.Manager
}

// NewHandlers wires the storefront handlers to their services.
func NewHandlers(
	opts Options,
	usersSvc *users.Service,
	catalogSvc *catalog.Service,
	carts *cart.Manager,
	orders *orders.Manager,
	reconciler *payments.Reconciler,
	sessions *session.Cache,
	fsm state.Manager,
) *Handlers {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	return &Handlers{
		opts:     opts,
		users:    usersSvc,
		catalog:  catalogSvc,
		carts:    carts,
		orders:   orders,
		payments: reconciler,
		sessions: sessions,
		fsm:      fsm,
	}
}

// channelRecipient lets a channel @username act as a telebot recipient.
type channelRecipient string

func (ch channelRecipient) Recipient() string { return string(ch) }

// Start registers the user and either shows the subscription gate or the
// main menu.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if err := h.users.Ensure(ctx, models.User{
		TgID:      sender.ID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		Username:  sender.Username,
	}); err != nil {
		return err
	}

	if h.gated(c) {
		return h.sendSubscriptionGate(c)
	}
	if err := tghelpers.SendText(c, "Welcome!"); err != nil {
		return err
	}
	return h.MainMenu(c)
}

// CheckSubscription re-checks channel membership after the user claims to
// have joined.
func (h *Handlers) CheckSubscription(c tele.Context) error {
	if h.gated(c) {
		return c.Respond(&tele.CallbackResponse{
			Text: "You are still not subscribed. Please join the channel first.",
		})
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "Welcome!"})
	return h.MainMenu(c)
}

// gated reports whether the sender must join the channel before shopping.
// Membership lookups that fail are treated as not subscribed.
func (h *Handlers) gated(c tele.Context) bool {
	if !h.opts.RequireSubscription || h.opts.Channel == "" {
		return false
	}
	member, err := c.Bot().ChatMemberOf(channelRecipient(h.opts.Channel), c.Sender())
	if err != nil {
		logger.TG.Warn("membership check failed",
			slog.String("event", "subscription.check"),
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return true
	}
	return member.Role == tele.Left || member.Role == tele.Kicked
}

func (h *Handlers) sendSubscriptionGate(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	join := markup.URL("Open channel", "https://t.me/"+trimAt(h.opts.Channel))
	confirm := markup.Data("I subscribed", cbCheckSubscription)
	markup.Inline(markup.Row(join), markup.Row(confirm))
	return tghelpers.SendText(c, "To use the shop, please subscribe to our channel first.",
		&tele.SendOptions{ReplyMarkup: markup})
}

func trimAt(channel string) string {
	if len(channel) > 0 && channel[0] == '@' {
		return channel[1:]
	}
	return channel
}

// MainMenu flushes the session and shows the top-level menu. Rendering edits
// the originating message when possible.
func (h *Handlers) MainMenu(c tele.Context) error {
	h.flushSession(c)

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Catalog", Unique: cbCategories}},
		[]keyboard.InlineBtn{
			{Text: "Cart", Unique: cbCart},
			{Text: "Orders", Unique: cbOrders},
		},
		[]keyboard.InlineBtn{{Text: "FAQ", Unique: cbFAQ}},
	)
	text := "This is the shop main menu. Open 'Catalog' to pick products, " +
		"'Cart' to check out, and 'FAQ' for common questions."
	return tghelpers.EditOrSendMD(c, text, markup)
}

// flushSession persists staged quantities and removes the product messages
// they belong to. Message deletions are best-effort. A failed flush re-stages
// the drained entries and keeps the messages so the next confirm retries them.
func (h *Handlers) flushSession(c tele.Context) {
	userID := c.Sender().ID
	entries, prompt := h.sessions.Drain(userID)
	if len(entries) == 0 && prompt == 0 {
		return
	}

	ctx := tghelpers.BuildContext(c)
	if err := h.carts.Flush(ctx, userID, entries); err != nil {
		logger.TG.Error("session flush failed",
			slog.String("event", "session.flush"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		h.sessions.Restore(userID, entries, prompt)
		return
	}

	for _, e := range entries {
		h.deleteMessage(c, userID, e.MessageID)
	}
	if prompt != 0 {
		h.deleteMessage(c, userID, prompt)
	}
}

func (h *Handlers) deleteMessage(c tele.Context, chatID int64, messageID int) {
	_ = c.Bot().Delete(&tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}

// FAQ renders the static question list.
func (h *Handlers) FAQ(c tele.Context) error {
	text := "*Q:* How do I pay for an order?\n*A:* Orders are paid online through the payment provider.\n\n" +
		"*Q:* How does delivery work?\n*A:* Orders are delivered to the address given at checkout, or picked up in store.\n\n" +
		"*Q:* Where can I find this FAQ?\n*A:* Right here, from the main menu."
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{{Text: "Main menu", Unique: cbMainMenu}})
	return tghelpers.EditOrSendMD(c, text, markup)
}

// Noop acknowledges decorative buttons such as the page indicator.
func (h *Handlers) Noop(c tele.Context) error {
	return nil
}
