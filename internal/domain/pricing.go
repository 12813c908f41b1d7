package domain

import "github.com/shopspring/decimal"

// ShippingPolicy parameterises the flat delivery surcharge applied to orders
// below the free-shipping threshold.
type ShippingPolicy struct {
	FreeShippingThreshold decimal.Decimal
	DeliveryCharge        decimal.Decimal
}

// DefaultShippingPolicy mirrors the storefront's launch configuration.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeShippingThreshold: decimal.NewFromInt(500),
		DeliveryCharge:        decimal.NewFromInt(50),
	}
}

// ChargeFor returns the delivery charge for the given order subtotal. Pure
// function of the subtotal; orders at or above the threshold ship free.
func (p ShippingPolicy) ChargeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.DeliveryCharge
}
