package feed

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFeed = `shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - name: Hammer
    category: 1
    quantity: 10
    price: 9.99
    price_rrc: "12.50"
    parameters:
      weight: "0.5 kg"
      length: 30
`

func TestParse_Valid(t *testing.T) {
	doc, err := Parse([]byte(validFeed))
	require.NoError(t, err)

	assert.Equal(t, "Acme", doc.Shop)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, Category{ID: 1, Name: "Tools"}, doc.Categories[0])

	require.Len(t, doc.Goods, 1)
	g := doc.Goods[0]
	assert.Equal(t, "Hammer", g.Name)
	require.NotNil(t, g.Quantity)
	assert.Equal(t, int64(10), *g.Quantity)
	assert.True(t, g.Price.Value.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, g.PriceRRC.Value.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, ParamValue("30"), g.Parameters["length"])
	assert.Equal(t, []string{"length", "weight"}, g.ParameterNames())
}

func TestParse_JSONIsAccepted(t *testing.T) {
	data := `{"shop":"Acme","categories":[{"id":1,"name":"Tools"}],` +
		`"goods":[{"name":"Hammer","category":1,"quantity":0,"price":0,"price_rrc":1,"parameters":{}}]}`

	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, int64(0), *doc.Goods[0].Quantity)
	assert.True(t, doc.Goods[0].Price.Value.IsZero())
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte("shop: [unclosed"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParse_InvalidData(t *testing.T) {
	cases := map[string]string{
		"missing shop": `categories: []
goods: []
`,
		"missing goods": `shop: Acme
categories: []
`,
		"missing price": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price_rrc: 1
    parameters: {}
`,
		"price is not a number": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: cheap
    price_rrc: 1
    parameters: {}
`,
		"negative price": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: -1
    price_rrc: 1
    parameters: {}
`,
		"missing quantity": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    price: 1
    price_rrc: 1
    parameters: {}
`,
		"parameter is a list": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: 1
    price_rrc: 1
    parameters:
      color: [red, blue]
`,
		"price with three decimals": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: 9.999
    price_rrc: 1
    parameters: {}
`,
		"price too large": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: 1
    price_rrc: 100000000
    parameters: {}
`,
		"parameter name too long": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: 1
    price_rrc: 1
    parameters:
      ` + strings.Repeat("n", 41) + `: x
`,
		"parameter value too long": `shop: Acme
categories: []
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: 1
    price_rrc: 1
    parameters:
      color: ` + strings.Repeat("в", 101) + `
`,
		"category without name": `shop: Acme
categories:
  - id: 1
goods: []
`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestValidate_ReportsFieldPath(t *testing.T) {
	q := int64(1)
	doc := Document{
		Shop:       "Acme",
		Categories: []Category{},
		Goods: []Good{{
			Name:       "Hammer",
			Category:   1,
			Quantity:   &q,
			PriceRRC:   Price{Value: decimal.NewFromInt(1), Valid: true},
			Parameters: map[string]ParamValue{},
		}},
	}

	err := Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goods[0].price")
}

func TestParse_AcceptsLimits(t *testing.T) {
	data := `shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - name: Hammer
    category: 1
    quantity: 1
    price: "99999999.99"
    price_rrc: 12.500
    parameters:
      ` + strings.Repeat("n", 40) + `: ` + strings.Repeat("в", 100) + `
`
	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, doc.Goods, 1)
	assert.True(t, doc.Goods[0].Price.Value.Equal(decimal.RequireFromString("99999999.99")))
	assert.Len(t, doc.Goods[0].Parameters, 1)
}

func TestValidate_ReportsParameterPath(t *testing.T) {
	q := int64(1)
	doc := Document{
		Shop:       "Acme",
		Categories: []Category{},
		Goods: []Good{{
			Name:       "Hammer",
			Category:   1,
			Quantity:   &q,
			Price:      Price{Value: decimal.RequireFromString("1.005"), Valid: true},
			PriceRRC:   Price{Value: decimal.NewFromInt(1), Valid: true},
			Parameters: map[string]ParamValue{"color": ParamValue(strings.Repeat("x", 101))},
		}},
	}

	err := Validate(doc)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "goods[0].price: money")
	assert.Contains(t, err.Error(), "goods[0].parameters[color]: max")
}
