package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/storage"
	"log/slog"
)

// Categories renders the catalog roots.
func (h *Handlers) Categories(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	cats, err := h.catalog.Categories(ctx)
	if err != nil {
		return err
	}

	rows := make([][]keyboard.InlineBtn, 0, len(cats)+1)
	for _, cat := range cats {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   cat.Name,
			Unique: cbCategory,
			Data:   strconv.FormatInt(cat.ID, 10),
		}})
	}
	rows = append(rows, mainMenuRow())
	return tghelpers.EditOrSendMD(c, "Choose a category:", keyboard.InlineButtonsRows(rows...))
}

// SubCategories renders one category's children.
func (h *Handlers) SubCategories(c tele.Context) error {
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	subs, err := h.catalog.SubCategories(ctx, categoryID)
	if err != nil {
		return err
	}

	rows := make([][]keyboard.InlineBtn, 0, len(subs)+1)
	for _, sub := range subs {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   sub.Name,
			Unique: cbSubCategory,
			Data:   fmt.Sprintf("%d|1", sub.ID),
		}})
	}
	rows = append(rows, mainMenuRow())
	return tghelpers.EditOrSendMD(c, "Choose a subcategory:", keyboard.InlineButtonsRows(rows...))
}

// Products sends one page of product cards followed by a pager prompt. Each
// card is its own photo message with a quantity stepper.
func (h *Handlers) Products(c tele.Context) error {
	subCategoryID, page, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return err
	}
	if page < 1 {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	items, totalPages, err := h.catalog.Page(ctx, subCategoryID, userID, int(page), h.opts.PageSize)
	if err != nil {
		return err
	}

	_ = c.Delete()
	h.sendProductCards(c, productCards(items))

	prev := keyboard.InlineBtn{Text: "⏪", Unique: cbNoop}
	if page > 1 {
		prev = keyboard.InlineBtn{Text: "⏪", Unique: cbSubCategory, Data: fmt.Sprintf("%d|%d", subCategoryID, page-1)}
	}
	next := keyboard.InlineBtn{Text: "⏩", Unique: cbNoop}
	if int(page) < totalPages {
		next = keyboard.InlineBtn{Text: "⏩", Unique: cbSubCategory, Data: fmt.Sprintf("%d|%d", subCategoryID, page+1)}
	}
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			prev,
			{Text: fmt.Sprintf("page %d of %d", page, totalPages), Unique: cbNoop},
			next,
		},
		[]keyboard.InlineBtn{{Text: "Confirm", Unique: cbCart}},
		mainMenuRow(),
	)
	return h.sendPrompt(c, "To continue your order press\n\"Confirm\":", markup)
}

// productCard pairs a product with its staged quantity for rendering.
type productCard struct {
	product  models.Product
	quantity int
}

func productCards(items []storage.ProductQuantity) []productCard {
	cards := make([]productCard, 0, len(items))
	for _, it := range items {
		cards = append(cards, productCard{product: it.Product, quantity: it.Quantity})
	}
	return cards
}

func cartCards(lines []storage.CartLine) []productCard {
	cards := make([]productCard, 0, len(lines))
	for _, l := range lines {
		cards = append(cards, productCard{product: l.Product, quantity: l.Quantity})
	}
	return cards
}

// sendProductCards sends one photo message per product and records each in
// the session cache. Sends are synchronous because the message id seeds the
// stepper state.
func (h *Handlers) sendProductCards(c tele.Context, cards []productCard) {
	userID := c.Sender().ID
	for _, card := range cards {
		p := card.product
		caption := fmt.Sprintf("%s\n%s\nPrice: %s\n\nIn cart:",
			p.Name, p.Description, p.Price.StringFixed(2))
		photo := &tele.Photo{File: tele.FromURL(p.ImageURL), Caption: caption}
		msg, err := c.Bot().Send(c.Recipient(), photo, stepperMarkup(p.ID, card.quantity))
		if err != nil {
			logger.TG.Error("product card send failed",
				slog.String("event", "catalog.card"),
				slog.Int64("user_id", userID),
				slog.Int64("product_id", p.ID),
				slog.String("err", err.Error()),
			)
			continue
		}
		h.sessions.RecordSelection(userID, msg.ID, p.ID, card.quantity)
	}
}

// sendPrompt sends the follow-up message under the product cards and
// remembers it so the next flush can clean it up.
func (h *Handlers) sendPrompt(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	msg, err := c.Bot().Send(c.Recipient(), text, markup)
	if err != nil {
		return err
	}
	h.sessions.SetPendingPrompt(c.Sender().ID, msg.ID)
	return nil
}

func stepperMarkup(productID int64, quantity int) *tele.ReplyMarkup {
	pid := strconv.FormatInt(productID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "–", Unique: cbQtyDecrease, Data: pid},
		{Text: strconv.Itoa(quantity), Unique: cbNoop},
		{Text: "+", Unique: cbQtyIncrease, Data: pid},
	})
}

// IncreaseQuantity handles the "+" stepper button.
func (h *Handlers) IncreaseQuantity(c tele.Context) error {
	return h.adjustQuantity(c, session.ActionIncrease)
}

// DecreaseQuantity handles the "–" stepper button.
func (h *Handlers) DecreaseQuantity(c tele.Context) error {
	return h.adjustQuantity(c, session.ActionDecrease)
}

func (h *Handlers) adjustQuantity(c tele.Context, action session.Action) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	cb := c.Callback()
	if cb == nil || cb.Message == nil {
		return nil
	}

	quantity, changed := h.sessions.AdjustQuantity(c.Sender().ID, cb.Message.ID, productID, action)
	if !changed {
		return nil
	}
	if err := c.Edit(stepperMarkup(productID, quantity)); err != nil {
		// A concurrent press may already have drawn this exact markup.
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return err
	}
	return nil
}

func mainMenuRow() []keyboard.InlineBtn {
	return []keyboard.InlineBtn{{Text: "Main menu", Unique: cbMainMenu}}
}
