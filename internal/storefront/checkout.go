package storefront

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/cart"
	"ateliernour.dz/shop/internal/checkout"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
	"ateliernour.dz/shop/internal/persist"
)

// Session storage keys for checkout progress.
const (
	checkoutFormKey = "checkout_form"
	directOrderKey  = "direct_order"
	lastOrderKey    = "last_order"
)

// CheckoutView feeds the checkout form and review pages.
type CheckoutView struct {
	Form    checkout.Form
	Errors  checkout.Errors
	Wilayas []checkout.Wilaya
	Items   []cart.Line
	Total   int64
	Mode    string
	Failed  bool
}

// ConfirmationView feeds the post-order page with the Instagram hand-off.
type ConfirmationView struct {
	Summary      checkout.OrderSummary
	Message      string
	InstagramURL string
}

type storedCheckout struct {
	Form checkout.Form `json:"form"`
	Mode string        `json:"mode"`
}

func (s *Server) handleCheckoutForm(w http.ResponseWriter, r *http.Request) {
	mode := checkoutMode(r.URL.Query().Get("mode"))
	items, total := s.checkoutItems(r, mode)
	if len(items) == 0 {
		http.Redirect(w, r, "/panier", http.StatusSeeOther)
		return
	}

	view := CheckoutView{
		Wilayas: checkout.Wilayas,
		Items:   items,
		Total:   total,
		Mode:    mode,
	}
	// re-fill from a previously validated form if the customer went back
	if stored, ok := s.loadStoredCheckout(r); ok {
		view.Form = stored.Form
	}

	data := s.newPageData(r, "checkout.title")
	data.Checkout = view
	s.render(w, r, "checkout", data)
}

// handleCheckoutReview validates the form. Invalid input re-renders the form
// with field errors and never reaches the backend; valid input renders the
// confirmation prompt.
func (s *Server) handleCheckoutReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	mode := checkoutMode(r.PostFormValue("mode"))
	items, total := s.checkoutItems(r, mode)
	if len(items) == 0 {
		http.Redirect(w, r, "/panier", http.StatusSeeOther)
		return
	}

	form := checkout.Form{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Phone:     r.PostFormValue("phone"),
		Wilaya:    r.PostFormValue("wilaya"),
		Commune:   r.PostFormValue("commune"),
		Instagram: r.PostFormValue("instagram"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		data := s.newPageData(r, "checkout.title")
		data.Checkout = CheckoutView{
			Form:    form,
			Errors:  errs,
			Wilayas: checkout.Wilayas,
			Items:   items,
			Total:   total,
			Mode:    mode,
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "checkout", data)
		return
	}

	normalized := form.Normalized()
	s.saveStoredCheckout(r, storedCheckout{Form: normalized, Mode: mode})

	data := s.newPageData(r, "checkout.review")
	data.Checkout = CheckoutView{
		Form:    normalized,
		Wilayas: checkout.Wilayas,
		Items:   items,
		Total:   total,
		Mode:    mode,
	}
	s.render(w, r, "checkout_review", data)
}

// handleDirectOrder starts a checkout for a single product without touching
// the cart.
func (s *Server) handleDirectOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	productID := r.PostFormValue("product")
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))
	if quantity < 1 {
		quantity = 1
	}
	item, err := s.buildAddItem(r, productID, quantity, r.PostForm["supplements"])
	if errors.Is(err, api.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}

	// snapshot through the cart rules so pricing and clamping stay identical
	c := cart.New()
	c.Add(item)
	lines := c.Lines()
	payload, _ := json.Marshal(lines)
	kv := s.sessionKV(r)
	_ = kv.Set(directOrderKey, payload)

	http.Redirect(w, r, "/commande?mode=direct", http.StatusSeeOther)
}

func (s *Server) handleCheckoutConfirm(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadStoredCheckout(r)
	if !ok {
		http.Redirect(w, r, "/commande", http.StatusSeeOther)
		return
	}
	items, total := s.checkoutItems(r, stored.Mode)
	if len(items) == 0 {
		http.Redirect(w, r, "/panier", http.StatusSeeOther)
		return
	}

	order := api.CreateOrder{
		CustomerInfo: api.CustomerInfo{
			FirstName: stored.Form.FirstName,
			LastName:  stored.Form.LastName,
			Phone:     stored.Form.Phone,
			Wilaya:    stored.Form.Wilaya,
			Commune:   stored.Form.Commune,
			Instagram: stored.Form.Instagram,
		},
		Total: total,
	}
	for _, line := range items {
		order.Items = append(order.Items, api.OrderItem{
			Product:  line.ProductID,
			Name:     line.Name,
			Size:     line.Variant,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
		})
	}

	if _, err := s.api.CreateOrder(r.Context(), order); err != nil {
		observability.FromContext(r.Context()).Error("create order", zap.Error(err))
		data := s.newPageData(r, "checkout.title")
		data.Checkout = CheckoutView{
			Form:    stored.Form,
			Wilayas: checkout.Wilayas,
			Items:   items,
			Total:   total,
			Mode:    stored.Mode,
			Failed:  true,
		}
		w.WriteHeader(http.StatusBadGateway)
		s.render(w, r, "checkout", data)
		return
	}

	kv := s.sessionKV(r)
	if stored.Mode == "cart" {
		s.cartStore(r).Clear()
	}
	_ = kv.Delete(checkoutFormKey)
	_ = kv.Delete(directOrderKey)

	summary := checkout.OrderSummary{
		Customer:    stored.Form,
		ProductName: items[0].Name,
		Quantity:    quantityOf(items),
		Supplements: supplementsOf(items),
		Total:       total,
	}
	if payload, err := json.Marshal(summary); err == nil {
		_ = kv.Set(lastOrderKey, payload)
	}
	s.pendingStore(r).Save(summary.ProductName, total, stored.Form.Instagram)

	http.Redirect(w, r, "/confirmation", http.StatusSeeOther)
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	raw, err := s.sessionKV(r).Get(lastOrderKey)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	var summary checkout.OrderSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := s.newPageData(r, "confirmation.title")
	data.Confirmation = ConfirmationView{
		Summary:      summary,
		Message:      checkout.DMMessage(summary),
		InstagramURL: "https://ig.me/m/" + url.PathEscape(s.cfg.Site.InstagramHandle),
	}
	s.render(w, r, "confirmation", data)
}

func (s *Server) handleDMSent(w http.ResponseWriter, r *http.Request) {
	s.pendingStore(r).MarkSent()
	redirectBack(w, r)
}

func (s *Server) handleDismissBanner(w http.ResponseWriter, r *http.Request) {
	s.pendingStore(r).Clear()
	redirectBack(w, r)
}

// checkoutItems resolves the lines being purchased for the given mode.
func (s *Server) checkoutItems(r *http.Request, mode string) ([]cart.Line, int64) {
	if mode == "direct" {
		raw, err := s.sessionKV(r).Get(directOrderKey)
		if err != nil {
			return nil, 0
		}
		var lines []cart.Line
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, 0
		}
		var total int64
		for _, line := range lines {
			total += line.Subtotal()
		}
		return lines, total
	}
	store := s.cartStore(r)
	return store.Lines(), store.Total()
}

func (s *Server) loadStoredCheckout(r *http.Request) (storedCheckout, bool) {
	raw, err := s.sessionKV(r).Get(checkoutFormKey)
	if err != nil {
		return storedCheckout{}, false
	}
	var stored storedCheckout
	if err := json.Unmarshal(raw, &stored); err != nil {
		return storedCheckout{}, false
	}
	return stored, true
}

func (s *Server) saveStoredCheckout(r *http.Request, stored storedCheckout) {
	if payload, err := json.Marshal(stored); err == nil {
		_ = s.sessionKV(r).Set(checkoutFormKey, payload)
	}
}

func (s *Server) sessionKV(r *http.Request) persist.KV {
	return custommw.GetSession(r).KV()
}

func checkoutMode(mode string) string {
	if mode == "direct" {
		return "direct"
	}
	return "cart"
}

func quantityOf(items []cart.Line) int {
	total := 0
	for _, line := range items {
		total += line.Quantity
	}
	return total
}

func supplementsOf(items []cart.Line) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, line := range items {
		for _, name := range line.Supplements {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("Referer")
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
