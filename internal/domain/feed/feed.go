// Package feed は仕入れ先フィード（YAML / JSON）の読み取りと検証。
package feed

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	// YAMLとして読めない
	ErrSyntax = errors.New("feed syntax error")
	// 必須キー欠落・型違い
	ErrInvalid = errors.New("feed data error")
)

// フィード全体
type Document struct {
	Shop       string     `yaml:"shop" validate:"required,max=50"`
	Categories []Category `yaml:"categories" validate:"required,dive"`
	Goods      []Good     `yaml:"goods" validate:"required,dive"`
}

type Category struct {
	ID   int64  `yaml:"id" validate:"required,gt=0"`
	Name string `yaml:"name" validate:"required,max=50"`
}

type Good struct {
	Name       string                `yaml:"name" validate:"required,max=80"`
	Category   int64                 `yaml:"category" validate:"required,gt=0"`
	Quantity   *int64                `yaml:"quantity" validate:"required,gte=0"`
	Price      Price                 `yaml:"price" validate:"required,money"`
	PriceRRC   Price                 `yaml:"price_rrc" validate:"required,money"`
	// 名前はparameters.name、値はproduct_parameters.valueの列幅
	Parameters map[string]ParamValue `yaml:"parameters" validate:"required,dive,keys,required,max=40,endkeys,max=100"`
}

// パラメータ名を名前順で返す
func (g Good) ParameterNames() []string {
	names := make([]string, 0, len(g.Parameters))
	for k := range g.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// 価格。数値でも文字列でも書かれたとおりの10進数で保持する
type Price struct {
	Value decimal.Decimal
	Valid bool
}

func (p *Price) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return typeError(n, "price must be a number")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(n.Value))
	if err != nil {
		return typeError(n, fmt.Sprintf("cannot parse %q as price", n.Value))
	}
	if d.IsNegative() {
		return typeError(n, "price must not be negative")
	}
	p.Value = d
	p.Valid = true
	return nil
}

// パラメータ値。スカラーなら書かれた文字列のまま
type ParamValue string

func (v *ParamValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return typeError(n, "parameter value must be a scalar")
	}
	*v = ParamValue(n.Value)
	return nil
}

func typeError(n *yaml.Node, msg string) error {
	return &yaml.TypeError{Errors: []string{fmt.Sprintf("line %d: %s", n.Line, msg)}}
}

// numeric(10,2)の上限
var maxPrice = decimal.New(1, 8)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// numeric(10,2)に丸めずに入る値だけ通す
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return d.Equal(d.Round(2)) && d.Abs().LessThan(maxPrice)
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if p, ok := field.Interface().(Price); ok && p.Valid {
			return p.Value.String()
		}
		return nil
	}, Price{})
	return v
}

// Parse はフィードを読み、必須キーと型を検証する。
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			return Document{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(te.Errors, "; "))
		}
		return Document{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate はパース済みのフィードを検証する。
func Validate(doc Document) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// "Document.goods[0].price" → "goods[0].price"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
