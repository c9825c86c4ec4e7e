// Package billing sells credit packs and subscriptions and keeps each
// user's credit ledger.
package billing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrUnknownItem = errors.New("billing: unknown catalog item")

const (
	KindPack = "pack"
	KindPlan = "plan"
)

type Pack struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Credits    int    `yaml:"credits" json:"credits"`
	PriceCents int    `yaml:"price_cents" json:"price_cents"`
}

type Plan struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	MonthlyCredits int    `yaml:"monthly_credits" json:"monthly_credits"`
	PriceCents     int    `yaml:"price_cents" json:"price_cents"`
}

type Catalog struct {
	Packs []Pack `yaml:"packs" json:"packs"`
	Plans []Plan `yaml:"plans" json:"plans"`
}

// Item is a purchasable catalog entry.
type Item struct {
	ID         string
	Kind       string
	Credits    int
	PriceCents int
}

func LoadCatalog(path string) (*Catalog, error) {
	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	check := func(id string, credits, price int) error {
		if id == "" {
			return errors.New("catalog: item without id")
		}
		if seen[id] {
			return fmt.Errorf("catalog: duplicate item id %q", id)
		}
		seen[id] = true
		if credits <= 0 || price < 0 {
			return fmt.Errorf("catalog: item %q needs positive credits and a non-negative price", id)
		}
		return nil
	}

	for _, p := range c.Packs {
		if err := check(p.ID, p.Credits, p.PriceCents); err != nil {
			return err
		}
	}
	for _, p := range c.Plans {
		if err := check(p.ID, p.MonthlyCredits, p.PriceCents); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Find(id string) (Item, error) {
	for _, p := range c.Packs {
		if p.ID == id {
			return Item{ID: p.ID, Kind: KindPack, Credits: p.Credits, PriceCents: p.PriceCents}, nil
		}
	}
	for _, p := range c.Plans {
		if p.ID == id {
			return Item{ID: p.ID, Kind: KindPlan, Credits: p.MonthlyCredits, PriceCents: p.PriceCents}, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}
