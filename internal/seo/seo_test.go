package seo

import (
	"strings"
	"testing"
	"time"
)

func TestProductSchemaCarriesOffer(t *testing.T) {
	payload := JSON(Product("Bouquet Rose", "Un bouquet au crochet", "https://ateliernour.dz/produits/p1", "", 2500, true))
	for _, want := range []string{
		`"@type":"Product"`,
		`"priceCurrency":"DZD"`,
		`"price":2500`,
		"schema.org/InStock",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected payload to contain %q:\n%s", want, payload)
		}
	}

	out := JSON(Product("Bouquet", "", "", "", 900, false))
	if !strings.Contains(out, "schema.org/OutOfStock") {
		t.Fatalf("expected out-of-stock availability:\n%s", out)
	}
}

func TestBreadcrumbListPositions(t *testing.T) {
	payload := JSON(BreadcrumbList([]BreadcrumbItem{
		{Name: "Accueil", Item: "https://ateliernour.dz/"},
		{Name: "Produits", Item: "https://ateliernour.dz/produits"},
	}))
	if !strings.Contains(payload, `"position":2`) {
		t.Fatalf("expected second breadcrumb position:\n%s", payload)
	}
}

func TestSitemapRendersEntries(t *testing.T) {
	body, err := Sitemap([]SitemapURL{
		{Loc: "https://ateliernour.dz/", Priority: "1.0"},
		{Loc: "https://ateliernour.dz/produits/p1", LastMod: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), ChangeFreq: "weekly"},
	})
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	out := string(body)
	for _, want := range []string{
		"http://www.sitemaps.org/schemas/sitemap/0.9",
		"<loc>https://ateliernour.dz/produits/p1</loc>",
		"<lastmod>2026-02-14</lastmod>",
		"<priority>1.0</priority>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected sitemap to contain %q:\n%s", want, out)
		}
	}
}

func TestRobotsBlocksCheckout(t *testing.T) {
	out := Robots("https://ateliernour.dz/")
	if !strings.Contains(out, "Disallow: /commande") {
		t.Fatalf("expected checkout disallow:\n%s", out)
	}
	if !strings.Contains(out, "Sitemap: https://ateliernour.dz/sitemap.xml") {
		t.Fatalf("expected sitemap link:\n%s", out)
	}
}
