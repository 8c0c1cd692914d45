package view

import (
	"errors"
	"strings"
)

type Name string

const (
	Welcome    Name = "welcome"
	Categories Name = "categories"
	Products   Name = "products"
	Cart       Name = "cart"
	Checkout   Name = "checkout"
)

var ErrUnknownView = errors.New("unknown view")

func ParseName(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case Welcome, Categories, Products, Cart, Checkout:
		return n, nil
	}
	return "", ErrUnknownView
}

func (n Name) String() string {
	return string(n)
}

// State is the visible screen. CategoryKey is set only for Products.
type State struct {
	View        Name   `json:"view"`
	CategoryKey string `json:"category_key,omitempty"`
}

// LaunchParams are the selectors the host passes when the storefront opens.
type LaunchParams struct {
	View     string `json:"view,omitempty"`
	Category string `json:"category,omitempty"`
}

// InitialState resolves the first screen from launch parameters. Checkout wins
// over cart, cart over categories, categories over a category; Welcome otherwise.
func InitialState(p LaunchParams) State {
	v := strings.ToLower(strings.TrimSpace(p.View))
	category := strings.TrimSpace(p.Category)

	switch {
	case v == string(Checkout):
		return State{View: Checkout}
	case v == string(Cart) || strings.EqualFold(category, string(Cart)):
		return State{View: Cart}
	case v == string(Categories):
		return State{View: Categories}
	case category != "":
		return State{View: Products, CategoryKey: category}
	default:
		return State{View: Welcome}
	}
}

// backAction is what the host back control does from a state.
type backAction int

const (
	backClose backAction = iota
	backToWelcome
	backToCategories
	backToCart
	backToLastCategory
)

func backTransition(current Name, welcomeShown bool) backAction {
	switch current {
	case Products:
		return backToCategories
	case Cart:
		return backToLastCategory
	case Checkout:
		return backToCart
	case Categories:
		if welcomeShown {
			return backToWelcome
		}
		return backClose
	default:
		return backClose
	}
}
