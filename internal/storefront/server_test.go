package storefront

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ateliernour.dz/shop/internal/api"
	"ateliernour.dz/shop/internal/cms"
	"ateliernour.dz/shop/internal/config"
	"ateliernour.dz/shop/internal/i18n"
)

func newTestServer(t *testing.T, fake *api.Fake) (*httptest.Server, *http.Client) {
	t.Helper()

	cfg, err := config.Load(config.WithEnvMap(map[string]string{
		"SHOP_TEMPLATES_DIR":  "../../templates",
		"SHOP_LOCALES_DIR":    "../../locales",
		"SHOP_CONTENT_DIR":    "../../content",
		"SHOP_PUBLIC_DIR":     "../../public",
		"SHOP_SESSION_SECURE": "false",
	}), config.WithoutSystemEnv(), config.WithEnvFile(""))
	require.NoError(t, err)

	bundle, err := i18n.Load(cfg.Site.LocalesDir, "fr", []string{"fr", "en", "ar"})
	require.NoError(t, err)

	srv, err := New(cfg, zap.NewNop(), fake, bundle, cms.NewStore(cfg.Site.ContentDir, "fr", "en"))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	return ts, client
}

func getDoc(t *testing.T, client *http.Client, url string) *goquery.Document {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func csrfToken(t *testing.T, doc *goquery.Document) string {
	t.Helper()
	token, ok := doc.Find(`input[name="csrf_token"]`).First().Attr("value")
	require.True(t, ok, "page must carry a csrf token")
	return token
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	return resp
}

func adminOrders(t *testing.T, fake *api.Fake) []api.Order {
	t.Helper()
	login, err := fake.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)
	orders, err := fake.ListOrders(context.Background(), login.Token)
	require.NoError(t, err)
	return orders
}

func TestHomeListsProducts(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	doc := getDoc(t, client, ts.URL+"/")
	require.Equal(t, 3, doc.Find(".product-card").Length())
	require.Contains(t, doc.Find(".featured").Text(), "Bouquet Rose Éternel")
	// category links derived from the catalog
	require.GreaterOrEqual(t, doc.Find(".category-list a").Length(), 3)
}

func TestProductsCategoryFilter(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	doc := getDoc(t, client, ts.URL+"/produits?categorie="+url.QueryEscape("Mini Bouquet"))
	require.Equal(t, 1, doc.Find(".product-card").Length())
	require.Contains(t, doc.Find(".product-card").Text(), "Mini Bouquet Pastel")
}

func TestProductPageShowsSupplements(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	doc := getDoc(t, client, ts.URL+"/produits/prod_rose")
	require.Contains(t, doc.Find("h1").Text(), "Bouquet Rose Éternel")
	require.Equal(t, 2, doc.Find(`.supplements input[name="supplements"]`).Length())
	require.Contains(t, doc.Find(".supplements").Text(), "Ruban doré")
}

func TestUnknownProductIs404(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	resp, err := client.Get(ts.URL + "/produits/prod_inconnu")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartAddUpdateRemove(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	token := csrfToken(t, getDoc(t, client, ts.URL+"/produits/prod_rose"))

	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"csrf_token":  {token},
		"product":     {"prod_rose"},
		"quantity":    {"2"},
		"supplements": {"Ruban doré"},
	})
	resp.Body.Close()

	doc := getDoc(t, client, ts.URL+"/panier")
	line := doc.Find(".cart-line")
	require.Equal(t, 1, line.Length())
	require.Contains(t, line.Find(".variant").Text(), "+ Ruban doré")
	// unit price 2500 + 300 supplement
	require.Contains(t, line.Find(".price").Text(), "2 800 DA")
	require.Contains(t, doc.Find(".cart-total").Text(), "5 600 DA")

	key, _ := line.Attr("data-key")
	require.Equal(t, "prod_rose-+ Ruban doré", key)

	// quantity clamps to the captured stock of 5
	resp = postForm(t, client, ts.URL+"/panier/quantite", url.Values{
		"csrf_token": {token},
		"key":        {key},
		"quantity":   {"12"},
	})
	resp.Body.Close()
	doc = getDoc(t, client, ts.URL+"/panier")
	qty, _ := doc.Find(`.cart-line input[name="quantity"]`).Attr("value")
	require.Equal(t, "5", qty)

	resp = postForm(t, client, ts.URL+"/panier/supprimer", url.Values{
		"csrf_token": {token},
		"key":        {key},
	})
	resp.Body.Close()
	doc = getDoc(t, client, ts.URL+"/panier")
	require.Zero(t, doc.Find(".cart-line").Length())
	require.Contains(t, doc.Find(".cart-empty").Text(), "Panier vide")
}

func TestCartPostWithoutCSRFIsRejected(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	// establish a session first
	getDoc(t, client, ts.URL+"/")
	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"product":  {"prod_rose"},
		"quantity": {"1"},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// postHTMX sends an htmx-flavoured form post.
func postHTMX(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestCartHTMXMutationsReturnFragment(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	token := csrfToken(t, getDoc(t, client, ts.URL+"/produits/prod_rose"))
	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"csrf_token": {token},
		"product":    {"prod_rose"},
		"quantity":   {"1"},
	})
	resp.Body.Close()

	// quantity change swaps the cart fragment in place of a redirect
	resp = postHTMX(t, client, ts.URL+"/panier/quantite", url.Values{
		"csrf_token": {token},
		"key":        {"prod_rose-Unique"},
		"quantity":   {"3"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.NotContains(t, string(body), "<html", "fragment must not ship the full document")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("#cart-contents").Length())
	qty, _ := doc.Find(`.cart-line input[name="quantity"]`).Attr("value")
	require.Equal(t, "3", qty)
	require.Contains(t, doc.Find(".cart-total").Text(), "7 500 DA")

	// removing the last line swaps in the empty-cart state
	resp = postHTMX(t, client, ts.URL+"/panier/supprimer", url.Values{
		"csrf_token": {token},
		"key":        {"prod_rose-Unique"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, err = goquery.NewDocumentFromReader(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, doc.Find("#cart-contents .cart-empty").Text(), "Panier vide")
}

func TestCartHTMXWithoutCSRFGetsErrorFragment(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	getDoc(t, client, ts.URL+"/")
	resp := postHTMX(t, client, ts.URL+"/panier/quantite", url.Values{
		"key":      {"prod_rose"},
		"quantity": {"2"},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `class="form-error"`)
}

func TestCheckoutRejectsInvalidPhoneWithoutOrder(t *testing.T) {
	fake := api.NewFake()
	ts, client := newTestServer(t, fake)

	token := csrfToken(t, getDoc(t, client, ts.URL+"/produits/prod_mini"))
	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"csrf_token": {token},
		"product":    {"prod_mini"},
		"quantity":   {"1"},
	})
	resp.Body.Close()

	resp = postForm(t, client, ts.URL+"/commande", url.Values{
		"csrf_token": {token},
		"mode":       {"cart"},
		"firstName":  {"Lina"},
		"lastName":   {"B"},
		"phone":      {"0441234567"},
		"wilaya":     {"Alger"},
		"commune":    {"Hydra"},
		"instagram":  {"@lina.dz"},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Contains(t, doc.Find(".form-error").Text(), "Numéro invalide")
	// the faulty submission never reaches the backend
	require.Empty(t, adminOrders(t, fake))
}

func TestCheckoutFlowFromCart(t *testing.T) {
	fake := api.NewFake()
	ts, client := newTestServer(t, fake)

	token := csrfToken(t, getDoc(t, client, ts.URL+"/produits/prod_rose"))
	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"csrf_token":  {token},
		"product":     {"prod_rose"},
		"quantity":    {"2"},
		"supplements": {"Carte message"},
	})
	resp.Body.Close()

	// validate: renders the review page
	resp = postForm(t, client, ts.URL+"/commande", url.Values{
		"csrf_token": {token},
		"mode":       {"cart"},
		"firstName":  {"Lina"},
		"lastName":   {"Bensaid"},
		"phone":      {"05 51 23 45 67"},
		"wilaya":     {"Alger"},
		"commune":    {"Hydra"},
		"instagram":  {"@lina.dz"},
	})
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, doc.Find("h1").Text(), "Confirmer")
	require.Contains(t, doc.Find(".customer-recap").Text(), "@lina.dz")

	// confirm: order lands in the backend, cart is cleared
	resp = postForm(t, client, ts.URL+"/commande/confirmer", url.Values{
		"csrf_token": {token},
	})
	doc, err = goquery.NewDocumentFromReader(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	message := doc.Find("#dm-message").Text()
	require.Contains(t, message, "📦 Nouvelle commande")
	require.Contains(t, message, "📞 Téléphone : 0551234567")
	require.Contains(t, message, "📸 Instagram : @lina.dz")
	require.Contains(t, message, "💰 Total : 5 400 DA")

	orders := adminOrders(t, fake)
	require.Len(t, orders, 1)
	require.Equal(t, int64(5400), orders[0].Total)
	require.Equal(t, api.StatusPending, orders[0].Status)
	require.Equal(t, "0551234567", orders[0].CustomerInfo.Phone)
	require.Equal(t, "lina.dz", orders[0].CustomerInfo.Instagram)

	cartDoc := getDoc(t, client, ts.URL+"/panier")
	require.Zero(t, cartDoc.Find(".cart-line").Length())

	// the pending banner shows up on subsequent visits
	home := getDoc(t, client, ts.URL+"/")
	require.Contains(t, home.Find(".pending-banner").Text(), "Bouquet Rose Éternel")

	// marking the DM as sent hides the banner
	resp = postForm(t, client, ts.URL+"/commande/dm-envoye", url.Values{
		"csrf_token": {token},
	})
	resp.Body.Close()
	home = getDoc(t, client, ts.URL+"/")
	require.Zero(t, home.Find(".pending-banner").Length())
}

func TestDirectOrderLeavesCartUntouched(t *testing.T) {
	fake := api.NewFake()
	ts, client := newTestServer(t, fake)

	token := csrfToken(t, getDoc(t, client, ts.URL+"/produits/prod_rose"))

	// something already in the cart
	resp := postForm(t, client, ts.URL+"/panier/ajouter", url.Values{
		"csrf_token": {token},
		"product":    {"prod_rose"},
		"quantity":   {"1"},
	})
	resp.Body.Close()

	// direct buy of another product
	resp = postForm(t, client, ts.URL+"/commande/direct", url.Values{
		"csrf_token": {token},
		"product":    {"prod_mini"},
		"quantity":   {"3"},
	})
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, doc.Find(".order-recap").Text(), "Mini Bouquet Pastel")
	require.Contains(t, doc.Find(".order-recap").Text(), "2 700 DA")

	resp = postForm(t, client, ts.URL+"/commande", url.Values{
		"csrf_token": {token},
		"mode":       {"direct"},
		"firstName":  {"Sara"},
		"lastName":   {"K"},
		"phone":      {"0661234567"},
		"wilaya":     {"Oran"},
		"commune":    {"Bir El Djir"},
		"instagram":  {"sara_k"},
	})
	resp.Body.Close()
	resp = postForm(t, client, ts.URL+"/commande/confirmer", url.Values{
		"csrf_token": {token},
	})
	resp.Body.Close()

	orders := adminOrders(t, fake)
	require.Len(t, orders, 1)
	require.Equal(t, int64(2700), orders[0].Total)

	// the cart still holds the separately added line
	cartDoc := getDoc(t, client, ts.URL+"/panier")
	require.Equal(t, 1, cartDoc.Find(".cart-line").Length())
	require.Contains(t, cartDoc.Find(".cart-line").Text(), "Bouquet Rose Éternel")
}

func TestCheckoutWithEmptyCartRedirects(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	resp, err := client.Get(ts.URL + "/commande")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.True(t, strings.HasSuffix(resp.Request.URL.Path, "/panier"))
}

func TestAboutPageRendersMarkdown(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	doc := getDoc(t, client, ts.URL+"/a-propos")
	require.Contains(t, doc.Find("h1").First().Text(), "À propos")
	require.Contains(t, doc.Find(".static-page .body").Text(), "entièrement à la main")
}

func TestRobotsAndSitemap(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	resp, err := client.Get(ts.URL + "/robots.txt")
	require.NoError(t, err)
	robots, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(robots), "Disallow: /commande")

	resp, err = client.Get(ts.URL + "/sitemap.xml")
	require.NoError(t, err)
	sitemap, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(sitemap), "/produits/prod_rose")
}

func TestProductPageEmbedsStructuredData(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	doc := getDoc(t, client, ts.URL+"/produits/prod_rose")
	jsonld := doc.Find(`script[type="application/ld+json"]`)
	require.GreaterOrEqual(t, jsonld.Length(), 1)
	require.Contains(t, jsonld.First().Text(), `"priceCurrency":"DZD"`)
}

func TestHealthz(t *testing.T) {
	ts, client := newTestServer(t, api.NewFake())

	resp, err := client.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
