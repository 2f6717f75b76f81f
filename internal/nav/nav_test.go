package nav

import "testing"

func TestBuildActiveState(t *testing.T) {
	items := Build("/produits/prod_rose")
	if len(items) != len(Main) {
		t.Fatalf("expected %d items, got %d", len(Main), len(items))
	}
	for _, it := range items {
		want := it.Href == "/produits"
		if it.Active != want {
			t.Errorf("item %s: active=%v, want %v", it.Href, it.Active, want)
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/produits/bouquet-rose")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %d", len(crumbs))
	}
	if crumbs[0].LabelKey != "nav.home" || crumbs[0].Active {
		t.Errorf("unexpected home crumb: %+v", crumbs[0])
	}
	if crumbs[1].LabelKey != "nav.products" {
		t.Errorf("expected nav.products label, got %+v", crumbs[1])
	}
	if crumbs[2].Label != "Bouquet rose" || !crumbs[2].Active {
		t.Errorf("unexpected leaf crumb: %+v", crumbs[2])
	}
}

func TestBreadcrumbsRoot(t *testing.T) {
	crumbs := Breadcrumbs("/")
	if len(crumbs) != 1 || !crumbs[0].Active {
		t.Fatalf("unexpected root crumbs: %+v", crumbs)
	}
}
