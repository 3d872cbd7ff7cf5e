package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
	"log/slog"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// ShowOrders lists the user's orders. Orders with an outstanding payment are
// reconciled against the provider on the way, so a payment completed in the
// browser surfaces as paid here without any callback from the provider.
func (h *Handlers) ShowOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	list, err := h.orders.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		_ = c.Respond(&tele.CallbackResponse{Text: "You have no orders."})
		return h.MainMenu(c)
	}

	rows := make([][]keyboard.InlineBtn, 0, len(list)+1)
	for _, o := range list {
		status := o.Status
		if o.PaymentID.Valid && o.PaymentID.String != "" {
			reconciled, err := h.payments.Reconcile(ctx, o.ID)
			if err != nil {
				logger.SVCPayments.Warn("reconcile on view failed",
					slog.String("event", "payment.reconcile"),
					slog.Int64("order_id", o.ID),
					slog.String("err", err.Error()),
				)
			} else {
				status = reconciled
			}
		}
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("Order #%d - %s", o.ID, status),
			Unique: cbOrder,
			Data:   formatID(o.ID),
		}})
	}
	rows = append(rows, mainMenuRow())
	return tghelpers.EditOrSendMD(c, "Your orders:", keyboard.InlineButtonsRows(rows...))
}

// OrderMenu shows the actions available for one order. Paid orders can no
// longer be paid or deleted; completed ones can still be deleted.
func (h *Handlers) OrderMenu(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	o, err := h.orders.Get(ctx, orderID)
	if err != nil {
		if shoperr.Is(err, shoperr.ErrNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "Order not found."})
		}
		return err
	}

	var rows [][]keyboard.InlineBtn
	if !o.Status.Terminal() {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Pay", Unique: cbOrderPay, Data: formatID(orderID)}})
	}
	if o.Status != models.StatusPaid {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Delete order", Unique: cbOrderDelete, Data: formatID(orderID)}})
	}
	rows = append(rows, mainMenuRow())

	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("Order #%d. Choose an action:", orderID),
		keyboard.InlineButtonsRows(rows...))
}

// PayOrder requests a payment for the order and shows the confirmation link.
func (h *Handlers) PayOrder(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	url, err := h.payments.Request(ctx, orderID)
	switch {
	case err == nil:
	case shoperr.Is(err, shoperr.ErrAlreadyPaid):
		return c.Respond(&tele.CallbackResponse{Text: "The order is already paid."})
	case shoperr.Is(err, shoperr.ErrZeroAmount):
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong with this order."})
	case shoperr.Is(err, shoperr.ErrProviderUnavailable):
		return c.Respond(&tele.CallbackResponse{
			Text:      "The payment provider is unavailable. Please try again later.",
			ShowAlert: true,
		})
	default:
		return err
	}

	markup := &tele.ReplyMarkup{}
	pay := markup.URL("YooKassa", url)
	toOrders := markup.Data("My orders", cbOrders)
	menu := markup.Data("Main menu", cbMainMenu)
	markup.Inline(markup.Row(pay), markup.Row(toOrders), markup.Row(menu))
	return tghelpers.EditOrSendMD(c, "Choose a payment method:", markup)
}

// DeleteOrder removes an order and re-renders the order list.
func (h *Handlers) DeleteOrder(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	if err := h.orders.Delete(ctx, orderID); err != nil {
		switch {
		case shoperr.Is(err, shoperr.ErrAlreadyPaid):
			return c.Respond(&tele.CallbackResponse{Text: "Paid orders cannot be deleted."})
		case shoperr.Is(err, shoperr.ErrNotFound):
			return c.Respond(&tele.CallbackResponse{Text: "Order not found."})
		default:
			return err
		}
	}
	return h.ShowOrders(c)
}
