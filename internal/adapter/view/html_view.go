package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const DefaultCurrencySymbol = "R$"

// Document is the rendered state of the page, keyed by the element it fills.
type Document struct {
	ProductList  template.HTML // #lista-produtos
	CartItems    template.HTML // #itens-carrinho
	ItemCount    string        // #qtd-itens
	DiscountText string        // #valor-desconto
	TotalText    string        // #valor-total
	CartVisible  bool          // "show" class on #carrinho
}

// HTMLView keeps the latest fragments for the HTTP handler to serve.
type HTMLView struct {
	currency string
	tmpl     *template.Template

	mu  sync.RWMutex
	doc Document
}

func NewHTMLView(currency string) (*HTMLView, error) {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}

	v := &HTMLView{currency: currency}
	tmpl, err := template.New("").
		Funcs(template.FuncMap{"money": v.Money}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	v.tmpl = tmpl
	v.doc = Document{
		ItemCount:    "0",
		DiscountText: v.Money(decimal.Zero),
		TotalText:    v.Money(decimal.Zero),
	}
	return v, nil
}

func (v *HTMLView) Money(d decimal.Decimal) string {
	return v.currency + " " + d.StringFixed(2)
}

func (v *HTMLView) RenderCatalog(products []domain.Product) error {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "catalog", products); err != nil {
		return errors.Wrap(err, "execute catalog template")
	}

	v.mu.Lock()
	v.doc.ProductList = template.HTML(buf.String())
	v.mu.Unlock()
	return nil
}

func (v *HTMLView) RenderCart(snapshot domain.CartSnapshot) error {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "cart-items", snapshot.Items); err != nil {
		return errors.Wrap(err, "execute cart template")
	}

	v.mu.Lock()
	v.doc.CartItems = template.HTML(buf.String())
	v.doc.ItemCount = strconv.Itoa(snapshot.Totals.Count)
	v.doc.DiscountText = v.Money(snapshot.Totals.Discount)
	v.doc.TotalText = v.Money(snapshot.Totals.Total)
	v.doc.CartVisible = snapshot.Visible
	v.mu.Unlock()
	return nil
}

func (v *HTMLView) Document() Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.doc
}

// WritePage writes the whole page.
func (v *HTMLView) WritePage(w io.Writer) error {
	return v.tmpl.ExecuteTemplate(w, "page", v.Document())
}

// WriteCart writes only the #carrinho section.
func (v *HTMLView) WriteCart(w io.Writer) error {
	return v.tmpl.ExecuteTemplate(w, "cart", v.Document())
}
