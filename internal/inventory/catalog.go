package inventory

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout accepted by LoadCatalog.
type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	Name              string  `yaml:"name"`
	SKU               *string `yaml:"sku"`
	Stock             int     `yaml:"stock"`
	LowStockThreshold int     `yaml:"low_stock_threshold"`
	CostPrice         *string `yaml:"cost_price"`
}

// LoadCatalog decodes a YAML product list:
//
//	products:
//	  - name: Widget
//	    sku: W-100
//	    stock: 4
//	    low_stock_threshold: 10
//	    cost_price: "12.50"
func LoadCatalog(r io.Reader) ([]Product, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	products := make([]Product, 0, len(f.Products))
	for i, e := range f.Products {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
		p := Product{
			Name:              e.Name,
			SKU:               e.SKU,
			Stock:             e.Stock,
			LowStockThreshold: e.LowStockThreshold,
		}
		if e.CostPrice != nil {
			d, err := decimal.NewFromString(*e.CostPrice)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %d (%s): invalid cost_price %q: %w", i, e.Name, *e.CostPrice, err)
			}
			p.CostPrice = &d
		}
		products = append(products, p)
	}
	return products, nil
}
