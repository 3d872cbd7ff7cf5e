package bot

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

// ShowCart flushes staged quantities and renders the persisted cart as
// product cards with steppers, followed by the delivery prompt.
func (h *Handlers) ShowCart(c tele.Context) error {
	h.flushSession(c)

	ctx := tghelpers.BuildContext(c)
	lines, err := h.carts.View(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Your cart is empty"})
	}

	_ = c.Delete()
	h.sendProductCards(c, cartCards(lines))

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "Choose delivery", Unique: cbDelivery},
			{Text: "Main menu", Unique: cbMainMenu},
		},
	)
	return h.sendPrompt(c, "To continue your order choose a delivery method:", markup)
}

// DeliveryChoice offers pickup or courier delivery.
func (h *Handlers) DeliveryChoice(c tele.Context) error {
	h.flushSession(c)

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "Pickup", Unique: cbOrderPickup},
			{Text: "Courier delivery", Unique: cbDeliveryAddress},
		},
		mainMenuRow(),
	)
	return tghelpers.EditOrSendMD(c, "Choose a delivery method:", markup)
}

// AskAddress switches the user into the address conversation.
func (h *Handlers) AskAddress(c tele.Context) error {
	h.fsm.SetState(c.Sender().ID, StateAwaitingAddress)
	markup := keyboard.InlineButtonsRows(mainMenuRow())
	return tghelpers.EditOrSendMD(c,
		"Send the delivery address as: City, Street, Building, Apartment", markup)
}

// CreatePickupOrder turns the cart into a pickup order.
func (h *Handlers) CreatePickupOrder(c tele.Context) error {
	return h.createOrder(c, models.DeliveryPickup)
}

// HandleAddress finishes the address conversation and creates a courier
// delivery order.
func (h *Handlers) HandleAddress(c tele.Context) error {
	address := strings.TrimSpace(c.Text())
	h.fsm.Clear(c.Sender().ID)
	if address == "" {
		return tghelpers.SendText(c, "The address cannot be empty. Please try again.")
	}
	return h.createOrder(c, "Delivery. Address: "+address)
}

func (h *Handlers) createOrder(c tele.Context, delivery string) error {
	ctx := tghelpers.BuildContext(c)
	orderID, err := h.orders.Create(ctx, c.Sender().ID, delivery)
	if err != nil {
		if shoperr.Is(err, shoperr.ErrEmptyCart) {
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: "Your cart is empty"})
			}
			return tghelpers.SendText(c, "Your cart is empty.")
		}
		return err
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Pay", Unique: cbOrderPay, Data: formatID(orderID)}},
		mainMenuRow(),
	)
	return tghelpers.EditOrSendMD(c,
		"Your order is ready for payment.\nPress 'Pay' to finish.", markup)
}
