package storefront

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/cart"
	custommw "ateliernour.dz/shop/internal/middleware"
	"ateliernour.dz/shop/internal/observability"
)

// CartView feeds the cart page.
type CartView struct {
	Lines []cart.Line
	Total int64
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	store := s.cartStore(r)
	data := s.newPageData(r, "cart.title")
	data.Cart = CartView{
		Lines: store.Lines(),
		Total: store.Total(),
	}
	s.render(w, r, "cart", data)
}

// handleCartAdd snapshots the product into the cart. Quantity and variant
// come from the product page form; supplements arrive as repeated fields.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	productID := r.PostFormValue("product")
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))
	if quantity < 1 {
		quantity = 1
	}
	supplements := r.PostForm["supplements"]

	item, err := s.buildAddItem(r, productID, quantity, supplements)
	if errors.Is(err, api.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}

	s.cartStore(r).Add(item)
	http.Redirect(w, r, "/panier", http.StatusSeeOther)
}

func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	key := r.PostFormValue("key")
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if key == "" || err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.cartStore(r).UpdateQuantity(key, quantity)
	s.respondCart(w, r)
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	key := r.PostFormValue("key")
	if key == "" {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.cartStore(r).Remove(key)
	s.respondCart(w, r)
}

// respondCart answers a cart mutation: htmx gets the refreshed cart fragment
// swapped in place, plain form posts get the usual redirect.
func (s *Server) respondCart(w http.ResponseWriter, r *http.Request) {
	if !custommw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/panier", http.StatusSeeOther)
		return
	}
	store := s.cartStore(r)
	data := s.newPageData(r, "cart.title")
	data.Cart = CartView{
		Lines: store.Lines(),
		Total: store.Total(),
	}
	s.render(w, r, "cart_contents", data)
}

// buildAddItem fetches the product and prices the chosen supplements.
func (s *Server) buildAddItem(r *http.Request, productID string, quantity int, supplements []string) (cart.AddItem, error) {
	product, err := s.api.GetProduct(r.Context(), productID)
	if err != nil {
		return cart.AddItem{}, err
	}

	var prices map[string]int64
	if len(supplements) > 0 {
		prices, err = s.api.SupplementPrices(r.Context())
		if err != nil {
			observability.FromContext(r.Context()).Warn("supplement prices", zap.Error(err))
			prices = nil
		}
		// only keep supplements the product actually offers
		offered := make(map[string]struct{}, len(product.Supplements))
		for _, name := range product.Supplements {
			offered[name] = struct{}{}
		}
		kept := supplements[:0]
		for _, name := range supplements {
			if _, ok := offered[name]; ok {
				kept = append(kept, name)
			}
		}
		supplements = kept
	}

	variant := cart.VariantLabel(supplements)
	return cart.AddItem{
		ProductID:        product.ID,
		Name:             product.Name,
		Image:            product.FirstImage(),
		BasePrice:        product.Price,
		Stock:            product.AvailableStock(""),
		Variant:          variant,
		Quantity:         quantity,
		Supplements:      supplements,
		SupplementPrices: prices,
	}, nil
}
