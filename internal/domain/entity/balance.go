package entity

import "time"

// Balance representa el saldo de stock actual de un producto.
// Es una vista materializada del kardex: la suma de todas las entradas menos
// todas las salidas aplicadas. Solo el motor de kardex lo muta.
// SKU y Name son copia desnormalizada del catálogo (el catálogo es externo).
type Balance struct {
	ProductID       string
	SKU             string
	Name            string
	CurrentStock    int64 // siempre >= 0
	ReorderLevel    int64
	ReorderQuantity int64
	Active          bool
	Discontinued    bool
	UpdatedAt       time.Time
}

// EffectiveThreshold devuelve el umbral de stock bajo: override si se indica,
// si no el punto de reorden propio del producto.
func (b *Balance) EffectiveThreshold(override *int64) int64 {
	if override != nil {
		return *override
	}
	return b.ReorderLevel
}
