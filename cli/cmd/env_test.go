package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/hypereval/builtin"
	"github.com/ardnew/hypereval/dom"
	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

const testPage = `<html><head><title>Shop</title></head><body>
<ul id="cart"><li class="item" data-price="3">pen</li><li class="item" data-price="4">ink</li></ul>
</body></html>`

const testContext = `
site: demo
it: 7
variables:
  count: 41
locals:
  name: ada
`

func TestEnv_Open(t *testing.T) {
	dir := t.TempDir()

	e := Env{
		Context:    writeFile(t, dir, "context.yaml", testContext),
		Document:   writeFile(t, dir, "page.html", testPage),
		Me:         "#cart",
		Categories: builtin.Categories(),
	}

	s, err := e.Open(t.Context(), log.Logger{})
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	if s.Document == nil || s.Loader != nil {
		t.Error("expected an eager runtime over the document")
	}

	if v, _ := s.Runtime.Globals().Get("site"); v != "demo" {
		t.Errorf("expected a global, got %v", v)
	}

	if v, _ := s.Runtime.Variables().Get("count"); v != float64(41) {
		t.Errorf("expected a normalized variable, got %#v", v)
	}

	if v, _ := s.Context.Locals.Get("name"); v != "ada" {
		t.Errorf("expected a local, got %v", v)
	}

	if s.Context.It != float64(7) {
		t.Errorf("expected the it slot, got %#v", s.Context.It)
	}

	el, ok := s.Context.Me.(*dom.Element)
	if !ok {
		t.Fatalf("expected me to be an element, got %T", s.Context.Me)
	}

	if id, _ := el.Attr("id"); id != "cart" {
		t.Errorf("expected #cart, got %s", el)
	}

	if n := len(s.Runtime.Registry().Names()); n < len(builtin.Names()) {
		t.Errorf("expected every builtin registered, got %d", n)
	}
}

func TestEnv_OpenLazy(t *testing.T) {
	e := Env{Lazy: true, Categories: []string{builtin.CategoryArithmetic}}

	s, err := e.Open(t.Context(), log.Logger{})
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	if s.Loader == nil || len(s.Loader.Keys()) == 0 {
		t.Fatal("expected builtins defined in the loader")
	}

	v, err := s.Runtime.Run(t.Context(), lang.Binary("*", lang.Lit(6), lang.Lit(7)), s.Context)
	if err != nil || v != float64(42) {
		t.Errorf("expected 42, got %v %v", v, err)
	}
}

func TestEnv_OpenErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		env  Env
		want error
	}{
		{"me without document", Env{Me: "#x"}, ErrNoDocument},
		{"bad context", Env{Context: writeFile(t, dir, "bad.yaml", "a: [")}, ErrReadContext},
		{"missing context", Env{Context: dir + "/missing.yaml"}, ErrReadContext},
		{"missing document", Env{Document: dir + "/missing.html"}, ErrReadDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.env.Open(t.Context(), log.Logger{})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEnv_OpenNoMatch(t *testing.T) {
	dir := t.TempDir()

	e := Env{Document: writeFile(t, dir, "page.html", testPage), Me: "#absent"}

	s, err := e.Open(t.Context(), log.Logger{})
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	if s.Context.Me != nil {
		t.Errorf("expected an unbound me, got %v", s.Context.Me)
	}
}
