package bot

import (
	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	"github.com/m3rciful/shopbot/core/telegram/state"
)

// Callback keys bound in inline keyboards. Payloads follow after '|'.
const (
	cbMainMenu          = "menu"
	cbCheckSubscription = "check_sub"
	cbCategories        = "categories"
	cbCategory          = "category"
	cbSubCategory       = "subcategory"
	cbQtyIncrease       = "qty_inc"
	cbQtyDecrease       = "qty_dec"
	cbCart              = "cart"
	cbDelivery          = "delivery"
	cbDeliveryAddress   = "delivery_addr"
	cbOrderPickup       = "order_pickup"
	cbOrders            = "orders"
	cbOrder             = "order"
	cbOrderPay          = "order_pay"
	cbOrderDelete       = "order_delete"
	cbFAQ               = "faq"
	cbNoop              = "noop"
)

// Register binds all storefront commands, callbacks and conversation states
// to the registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Open the shop",
	})

	_ = reg.RegisterCallback(cbMainMenu, h.MainMenu)
	_ = reg.RegisterCallback(cbCheckSubscription, h.CheckSubscription)
	_ = reg.RegisterCallback(cbCategories, h.Categories)
	_ = reg.RegisterCallback(cbCategory, h.SubCategories)
	_ = reg.RegisterCallback(cbSubCategory, h.Products)
	_ = reg.RegisterCallback(cbQtyIncrease, h.IncreaseQuantity)
	_ = reg.RegisterCallback(cbQtyDecrease, h.DecreaseQuantity)
	_ = reg.RegisterCallback(cbCart, h.ShowCart)
	_ = reg.RegisterCallback(cbDelivery, h.DeliveryChoice)
	_ = reg.RegisterCallback(cbDeliveryAddress, h.AskAddress)
	_ = reg.RegisterCallback(cbOrderPickup, h.CreatePickupOrder)
	_ = reg.RegisterCallback(cbOrders, h.ShowOrders)
	_ = reg.RegisterCallback(cbOrder, h.OrderMenu)
	_ = reg.RegisterCallback(cbOrderPay, h.PayOrder)
	_ = reg.RegisterCallback(cbOrderDelete, h.DeleteOrder)
	_ = reg.RegisterCallback(cbFAQ, h.FAQ)
	_ = reg.RegisterCallback(cbNoop, h.Noop)

	state.RegisterHandler(StateAwaitingAddress, h.HandleAddress)
}
